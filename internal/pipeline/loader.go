package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/notechunk/internal/model"
)

// DefaultMaxTextBytes bounds a single extracted text file
const DefaultMaxTextBytes int64 = 32 << 20

// ErrTooLarge is returned for text files above the loader limit
var ErrTooLarge = errors.New("file too large")

// Loader reads extracted text files into documents
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader; maxBytes <= 0 uses DefaultMaxTextBytes
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTextBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// Load reads path as UTF-8 text. The document name is the file's base name.
func (l *Loader) Load(path string) (model.Document, error) {
	doc := model.Document{Name: filepath.Base(path), Path: path}

	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	// one extra byte tells a file at the limit from one above it
	body, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(body)) > l.maxBytes {
		return doc, fmt.Errorf("%s: %w (limit %d bytes)", path, ErrTooLarge, l.maxBytes)
	}

	doc.Text = string(body)
	return doc, nil
}

// stem returns the file name without directory and extension
func stem(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

// outputKey identifies the artifacts written for name. Case is folded so two
// names never map to one file on case-insensitive filesystems.
func outputKey(name string) string {
	return strings.ToLower(stem(name))
}
