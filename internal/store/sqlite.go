package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/notechunk/internal/model"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	source_file  TEXT    NOT NULL,
	chunk_index  INTEGER NOT NULL,
	total_chunks INTEGER NOT NULL,
	chunk_id     TEXT    NOT NULL,
	text         TEXT    NOT NULL,
	updated_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (source_file, chunk_index)
);
CREATE INDEX IF NOT EXISTS idx_chunks_chunk_id ON chunks(chunk_id);
`

// SQLiteStore indexes chunks in a SQLite database so they can be looked up
// by source or fingerprint
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveChunks replaces every row of sourceFile in one transaction
func (s *SQLiteStore) SaveChunks(ctx context.Context, sourceFile string, chunks []model.Chunk) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_file = ?`, sourceFile); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", sourceFile, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (source_file, chunk_index, total_chunks, chunk_id, text, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, c := range chunks {
		if _, err = stmt.ExecContext(ctx, sourceFile, c.Index, c.Total, c.ID, c.Text, now); err != nil {
			return fmt.Errorf("insert chunk %d of %s: %w", c.Index, sourceFile, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Chunks returns the chunks of sourceFile ordered by index
func (s *SQLiteStore) Chunks(ctx context.Context, sourceFile string) ([]model.Chunk, error) {
	return s.query(ctx, `
		SELECT source_file, chunk_index, total_chunks, chunk_id, text
		FROM chunks WHERE source_file = ? ORDER BY chunk_index`, sourceFile)
}

// FindByID returns every chunk carrying fingerprint id, across sources
func (s *SQLiteStore) FindByID(ctx context.Context, id string) ([]model.Chunk, error) {
	return s.query(ctx, `
		SELECT source_file, chunk_index, total_chunks, chunk_id, text
		FROM chunks WHERE chunk_id = ? ORDER BY source_file, chunk_index`, id)
}

// Sources lists the indexed source files
func (s *SQLiteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source_file FROM chunks ORDER BY source_file`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.SourceFile, &c.Index, &c.Total, &c.ID, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
