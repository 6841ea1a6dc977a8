// Package store persists chunk records.
package store

import (
	"context"

	"github.com/ppiankov/notechunk/internal/model"
)

// Store saves the chunks of one source document, replacing any earlier
// chunks of that source
type Store interface {
	SaveChunks(ctx context.Context, sourceFile string, chunks []model.Chunk) error
	Close() error
}

// Multi fans a save out to several stores, stopping at the first error
type Multi []Store

// SaveChunks saves to every store in order
func (m Multi) SaveChunks(ctx context.Context, sourceFile string, chunks []model.Chunk) error {
	for _, s := range m {
		if err := s.SaveChunks(ctx, sourceFile, chunks); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every store and returns the first error
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
