package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "index", "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveChunks(ctx, "atelier.txt", sampleChunks("atelier.txt")))

	got, err := s.Chunks(ctx, "atelier.txt")
	require.NoError(t, err)
	assert.Equal(t, sampleChunks("atelier.txt"), got)
}

func TestSQLiteStore_ReplacesSource(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveChunks(ctx, "atelier.txt", sampleChunks("atelier.txt")))
	require.NoError(t, s.SaveChunks(ctx, "autre.txt", sampleChunks("autre.txt")))

	rerun := sampleChunks("atelier.txt")[:1]
	rerun[0].Total = 1
	require.NoError(t, s.SaveChunks(ctx, "atelier.txt", rerun))

	got, err := s.Chunks(ctx, "atelier.txt")
	require.NoError(t, err)
	assert.Equal(t, rerun, got)

	other, err := s.Chunks(ctx, "autre.txt")
	require.NoError(t, err)
	assert.Len(t, other, 2, "other sources untouched")
}

func TestSQLiteStore_FindByID(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveChunks(ctx, "a.txt", sampleChunks("a.txt")))
	require.NoError(t, s.SaveChunks(ctx, "b.txt", sampleChunks("b.txt")))

	got, err := s.FindByID(ctx, "0123456789abcdef")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].SourceFile)
	assert.Equal(t, "b.txt", got[1].SourceFile)

	sources, err := s.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, sources)
}

func TestSQLiteStore_EmptySaveClearsSource(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveChunks(ctx, "a.txt", sampleChunks("a.txt")))
	require.NoError(t, s.SaveChunks(ctx, "a.txt", nil))

	got, err := s.Chunks(ctx, "a.txt")
	require.NoError(t, err)
	assert.Empty(t, got)
}
