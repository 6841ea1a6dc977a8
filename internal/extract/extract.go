// Package extract turns raw note files into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned for files no extractor handles
var ErrUnsupportedFormat = errors.New("unsupported format")

// Extractor reads the text of one file
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to Extractor
type ExtractorFunc func(path string) (string, error)

// Extract calls f(path)
func (f ExtractorFunc) Extract(path string) (string, error) {
	return f(path)
}

// Registry picks an extractor by file extension. Files without an extension
// are sniffed with mimetype.
type Registry struct {
	byExt  map[string]Extractor
	byMIME map[string]Extractor
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]Extractor),
		byMIME: make(map[string]Extractor),
	}
}

// DefaultRegistry handles .txt, .pdf and .docx
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTextExtractor(), []string{".txt"}, "text/plain")
	r.Register(NewPDFExtractor(), []string{".pdf"}, "application/pdf")
	r.Register(NewDOCXExtractor(), []string{".docx"}, docxMIME)
	return r
}

// Register maps extensions (with leading dot) and MIME types to e
func (r *Registry) Register(e Extractor, exts []string, mimeTypes ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
	for _, m := range mimeTypes {
		r.byMIME[m] = e
	}
}

// Extensions lists the registered extensions, sorted
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has an extractor
func (r *Registry) Supports(path string) bool {
	_, err := r.lookup(path)
	return err == nil
}

// Extract returns the text of path. Unsupported files yield an error wrapping
// ErrUnsupportedFormat; a file with no text yields "" and no error.
func (r *Registry) Extract(path string) (string, error) {
	e, err := r.lookup(path)
	if err != nil {
		return "", err
	}
	text, err := e.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return normalizeNewlines(text), nil
}

func (r *Registry) lookup(path string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if e, ok := r.byExt[ext]; ok {
			return e, nil
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", filepath.Base(path), err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if e, ok := r.byMIME[m.String()]; ok {
			return e, nil
		}
		// text/plain carries a charset parameter
		if base, _, found := strings.Cut(m.String(), ";"); found {
			if e, ok := r.byMIME[base]; ok {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%s (%s): %w", filepath.Base(path), mt.String(), ErrUnsupportedFormat)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
