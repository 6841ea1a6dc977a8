package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/notechunk/internal/model"
)

func sampleChunks(source string) []model.Chunk {
	return []model.Chunk{
		{Text: "Le BL est édité après validation <urgent> & signé", ID: "0123456789abcdef", Index: 0, Total: 2, SourceFile: source},
		{Text: "Les écarts de stock sont constatés en fin de mois", ID: "fedcba9876543210", Index: 1, Total: 2, SourceFile: source},
	}
}

func TestJSONWriter_Path(t *testing.T) {
	w := NewJSONWriter("out")
	assert.Equal(t, filepath.Join("out", "atelier_chunks.json"), w.Path("atelier.txt"))
	assert.Equal(t, filepath.Join("out", "notes.v2_chunks.json"), w.Path("data/notes.v2.txt"))
	assert.Equal(t, filepath.Join("out", "brut_chunks.json"), w.Path("brut"))
}

func TestJSONWriter_SaveChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks")
	w := NewJSONWriter(dir)

	require.NoError(t, w.SaveChunks(context.Background(), "atelier.txt", sampleChunks("atelier.txt")))

	data, err := os.ReadFile(w.Path("atelier.txt"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "édité", "non-ASCII must be preserved")
	assert.Contains(t, content, "<urgent> &", "HTML characters must not be escaped")
	assert.Contains(t, content, "\n  {\n    \"text\"", "expected two-space indentation")
	for _, key := range []string{`"chunk_id"`, `"metadata"`, `"source_file"`, `"chunk_index"`, `"total_chunks"`} {
		assert.Contains(t, content, key)
	}

	records, err := ReadRecords(w.Path("atelier.txt"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fedcba9876543210", records[1].ChunkID)
	assert.Equal(t, 1, records[1].Metadata.ChunkIndex)
	assert.Equal(t, 2, records[1].Metadata.TotalChunks)
	assert.Equal(t, "atelier.txt", records[1].Metadata.SourceFile)
}

func TestJSONWriter_OverwritesOnRerun(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONWriter(dir)
	ctx := context.Background()

	require.NoError(t, w.SaveChunks(ctx, "atelier.txt", sampleChunks("atelier.txt")))
	require.NoError(t, w.SaveChunks(ctx, "atelier.txt", sampleChunks("atelier.txt")[:1]))

	records, err := ReadRecords(w.Path("atelier.txt"))
	require.NoError(t, err)
	assert.Len(t, records, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONWriter_EmptyDocument(t *testing.T) {
	w := NewJSONWriter(t.TempDir())
	require.NoError(t, w.SaveChunks(context.Background(), "vide.txt", nil))

	data, err := os.ReadFile(w.Path("vide.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestMulti(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	m := Multi{NewJSONWriter(dirA), NewJSONWriter(dirB)}

	require.NoError(t, m.SaveChunks(context.Background(), "a.txt", sampleChunks("a.txt")))
	assert.FileExists(t, filepath.Join(dirA, "a_chunks.json"))
	assert.FileExists(t, filepath.Join(dirB, "a_chunks.json"))
	assert.NoError(t, m.Close())
}
