package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeDOCX(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`))

	w, err = zw.Create(docxBodyPart)
	require.NoError(t, err)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestRegistry_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "atelier.TXT", []byte("Ligne une\r\nLigne deux\r\n"))

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Ligne une\nLigne deux\n", text)
}

func TestRegistry_TextStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Réunion de cadrage")...))

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Réunion de cadrage", text)
}

func TestRegistry_TextLatin1(t *testing.T) {
	dir := t.TempDir()
	// "Écart de stock constaté" in ISO-8859-1
	latin1 := []byte{0xC9, 'c', 'a', 'r', 't', ' ', 'd', 'e', ' ', 's', 't', 'o', 'c', 'k', ' ', 'c', 'o', 'n', 's', 't', 'a', 't', 0xE9}
	path := writeFile(t, dir, "ancien.txt", latin1)

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Écart de stock constaté", text)
}

func TestRegistry_EmptyText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vide.txt", nil)

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRegistry_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tableau.xlsx", []byte("PK"))

	_, err := DefaultRegistry().Extract(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, DefaultRegistry().Supports(path))
}

func TestRegistry_SniffsExtensionlessText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes", []byte("Compte rendu sans extension.\n"))

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Compte rendu sans extension.\n", text)
}

func TestRegistry_SniffRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

	_, err := DefaultRegistry().Extract(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_Extensions(t *testing.T) {
	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, DefaultRegistry().Extensions())
}

func TestRegistry_CustomExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", []byte("# titre"))

	r := DefaultRegistry()
	r.Register(ExtractorFunc(func(string) (string, error) { return "converti", nil }), []string{".MD"})

	text, err := r.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "converti", text)
}

func TestDOCX_Paragraphs(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "atelier.docx",
		`<w:p><w:r><w:t>Le client utilise </w:t></w:r><w:r><w:t xml:space="preserve">un fichier Excel.</w:t></w:r></w:p>`+
			`<w:p></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cellule</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>Fin</w:t><w:tab/><w:t>du document</w:t></w:r></w:p>`)

	text, err := DefaultRegistry().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Le client utilise un fichier Excel.\n\nCellule\nFin\tdu document", text)
}

func TestDOCX_NotAZip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "faux.docx", []byte("pas un zip"))

	_, err := DefaultRegistry().Extract(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPDF_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "casse.pdf", []byte("%PDF-1.4\nrien de valide"))

	_, err := NewPDFExtractor().Extract(path)
	assert.Error(t, err)
}
