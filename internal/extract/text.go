package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// utf8BOM is stripped from the start of text files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextExtractor reads plain-text notes. Valid UTF-8 is returned as is;
// anything else is decoded from the detected charset.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract reads path as text
func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return decodeText(data)
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	// mimetype reports e.g. "text/plain; charset=utf-16le" or "charset=iso-8859-1"
	contentType := mimetype.Detect(data).String()
	enc, name, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("transcode from %s: %w", name, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("transcoded result from %s is not valid utf-8", name)
	}
	return string(bytes.TrimPrefix(decoded, utf8BOM)), nil
}
