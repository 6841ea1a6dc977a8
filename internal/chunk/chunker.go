package chunk

import (
	"context"
	"strings"

	"github.com/ppiankov/notechunk/internal/fingerprint"
	"github.com/ppiankov/notechunk/internal/logging"
	"github.com/ppiankov/notechunk/internal/model"
	"github.com/ppiankov/notechunk/internal/noise"
)

// Chunker runs the full chunking core for one document:
// noise filter, block reconstruction, then fingerprint and positional metadata.
type Chunker struct {
	filter        *noise.Filter
	reconstructor *Reconstructor
	logger        logging.Logger
}

// NewChunker creates a chunker
func NewChunker(filter *noise.Filter, reconstructor *Reconstructor, logger logging.Logger) *Chunker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Chunker{
		filter:        filter,
		reconstructor: reconstructor,
		logger:        logger,
	}
}

// Chunk produces the chunks of one document. Whitespace-only text and all-noise
// text both yield zero chunks; neither is an error.
func (c *Chunker) Chunk(ctx context.Context, sourceFile, rawText string) []model.Chunk {
	if strings.TrimSpace(rawText) == "" {
		return nil
	}

	lines := c.filter.Filter(rawText)
	if len(lines) == 0 {
		c.logger.Debug("document contains only noise", "source_file", sourceFile)
		return nil
	}

	texts := c.reconstructor.Reconstruct(ctx, lines)
	return Assemble(sourceFile, texts)
}

// Assemble attaches fingerprints and contiguous 0..N-1 indexes to chunk texts
func Assemble(sourceFile string, texts []string) []model.Chunk {
	if len(texts) == 0 {
		return nil
	}
	chunks := make([]model.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = model.Chunk{
			Text:       text,
			ID:         fingerprint.Of(text),
			Index:      i,
			Total:      len(texts),
			SourceFile: sourceFile,
		}
	}
	return chunks
}
