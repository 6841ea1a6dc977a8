package chunk

import (
	"context"
	"errors"
	"strings"

	"github.com/ppiankov/notechunk/internal/logging"
)

// ErrNoBlocks is reported when a splitter returns nothing usable
var ErrNoBlocks = errors.New("splitter returned no blocks")

// Splitter partitions a paragraph into self-contained units.
// Implementations may call external services and may fail; callers fall back.
type Splitter interface {
	Split(ctx context.Context, paragraph string, maxWords int) ([]string, error)
}

// SplitterFunc adapts a function to Splitter
type SplitterFunc func(ctx context.Context, paragraph string, maxWords int) ([]string, error)

// Split calls f
func (f SplitterFunc) Split(ctx context.Context, paragraph string, maxWords int) ([]string, error) {
	return f(ctx, paragraph, maxWords)
}

// SplitOutcome records which path produced a paragraph's units
type SplitOutcome string

const (
	OutcomeAtomic   SplitOutcome = "atomic"   // paragraph already within budget
	OutcomeModel    SplitOutcome = "model"    // splitter succeeded
	OutcomeFallback SplitOutcome = "fallback" // sentence fallback used
)

// Observer receives one outcome per semantic split
type Observer interface {
	ObserveSplit(outcome SplitOutcome)
}

// SemanticSplitter decomposes long paragraphs into atomic units. It prefers the
// configured Splitter and always recovers through SplitBySentences.
type SemanticSplitter struct {
	splitter Splitter
	opts     Options
	logger   logging.Logger
	observer Observer
}

// NewSemanticSplitter creates a semantic splitter. A nil splitter means every long
// paragraph goes straight to the sentence fallback.
func NewSemanticSplitter(splitter Splitter, opts Options, logger logging.Logger) *SemanticSplitter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SemanticSplitter{
		splitter: splitter,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// SetObserver attaches an outcome observer
func (s *SemanticSplitter) SetObserver(o Observer) {
	s.observer = o
}

// Split returns the paragraph's semantic units. maxWords <= 0 uses the configured budget.
// It never returns an error: model failures are logged and replaced by the fallback.
func (s *SemanticSplitter) Split(ctx context.Context, paragraph string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = s.opts.MaxWords
	}
	words := WordCount(paragraph)
	if words <= maxWords {
		s.observe(OutcomeAtomic)
		return []string{strings.TrimSpace(paragraph)}
	}

	if s.splitter == nil {
		s.observe(OutcomeFallback)
		return splitBySentences(paragraph, maxWords, s.opts.MinChunkWords)
	}

	blocks, err := s.splitter.Split(ctx, paragraph, maxWords)
	if err == nil {
		blocks = cleanBlocks(blocks)
		if len(blocks) == 0 {
			err = ErrNoBlocks
		}
	}
	if err != nil {
		s.logger.Warn("semantic split failed, using sentence fallback",
			"error", err,
			"paragraph_words", words,
		)
		s.observe(OutcomeFallback)
		return splitBySentences(paragraph, maxWords, s.opts.MinChunkWords)
	}

	s.observe(OutcomeModel)
	return blocks
}

func (s *SemanticSplitter) observe(outcome SplitOutcome) {
	if s.observer != nil {
		s.observer.ObserveSplit(outcome)
	}
}

// cleanBlocks trims blocks and drops empty ones
func cleanBlocks(blocks []string) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
