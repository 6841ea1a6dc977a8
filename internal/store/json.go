package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/notechunk/internal/model"
)

// ChunkFileSuffix is appended to the source stem to name the artifact
const ChunkFileSuffix = "_chunks.json"

// JSONWriter writes one <stem>_chunks.json file per source into dir
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer into dir
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Path returns the artifact path for sourceFile
func (w *JSONWriter) Path(sourceFile string) string {
	base := filepath.Base(sourceFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.dir, stem+ChunkFileSuffix)
}

// SaveChunks overwrites the artifact for sourceFile
func (w *JSONWriter) SaveChunks(ctx context.Context, sourceFile string, chunks []model.Chunk) error {
	data, err := MarshalRecords(model.Records(chunks))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create chunks dir: %w", err)
	}
	return writeFileAtomic(w.Path(sourceFile), data)
}

// Close is a no-op
func (w *JSONWriter) Close() error {
	return nil
}

// MarshalRecords renders records as indented UTF-8 JSON without escaping
// non-ASCII or HTML characters
func MarshalRecords(records []model.ChunkRecord) ([]byte, error) {
	if records == nil {
		records = []model.ChunkRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshal chunks: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadRecords loads an artifact written by JSONWriter
func ReadRecords(path string) ([]model.ChunkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}
	var records []model.ChunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse chunks %s: %w", path, err)
	}
	return records, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
