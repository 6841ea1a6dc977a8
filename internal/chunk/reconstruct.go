// Package chunk turns filtered note lines into short, self-contained chunks.
package chunk

import (
	"context"
	"regexp"
	"strings"

	"github.com/ppiankov/notechunk/internal/model"
)

const (
	DefaultMaxWords      = 35
	DefaultMinChunkWords = 5
	DefaultMinSplitWords = 6
)

// Options holds the chunking thresholds
type Options struct {
	MaxWords      int // word budget handed to the semantic splitter
	MinChunkWords int // chunks below this are dropped
	MinSplitWords int // paragraphs below this skip semantic splitting
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		MaxWords:      DefaultMaxWords,
		MinChunkWords: DefaultMinChunkWords,
		MinSplitWords: DefaultMinSplitWords,
	}
}

// OptionsFromConfig maps configuration onto Options
func OptionsFromConfig(cfg model.ChunkingConfig) Options {
	return Options{
		MaxWords:      cfg.MaxWords,
		MinChunkWords: cfg.MinChunkWords,
		MinSplitWords: cfg.MinSplitWords,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.MinChunkWords <= 0 {
		o.MinChunkWords = DefaultMinChunkWords
	}
	if o.MinSplitWords <= 0 {
		o.MinSplitWords = DefaultMinSplitWords
	}
	return o
}

var ordinalPrefix = regexp.MustCompile(`^\d+\.`)

// IsListItem reports whether line starts with a bullet ("-", "•", "*") or an
// ordinal such as "3." once leading whitespace is removed.
func IsListItem(line string) bool {
	l := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(l, "-") || strings.HasPrefix(l, "•") || strings.HasPrefix(l, "*") {
		return true
	}
	return ordinalPrefix.MatchString(l)
}

// Reconstructor regroups lines into paragraphs and splits them into chunk texts
type Reconstructor struct {
	semantic *SemanticSplitter
	opts     Options
}

// NewReconstructor creates a reconstructor driving paragraphs through semantic
func NewReconstructor(semantic *SemanticSplitter, opts Options) *Reconstructor {
	return &Reconstructor{semantic: semantic, opts: opts.withDefaults()}
}

// Paragraphs groups lines into paragraphs. Prose lines accumulate and are joined with
// single spaces; every list item is flushed as its own paragraph.
func (r *Reconstructor) Paragraphs(lines []string) []string {
	var (
		paragraphs []string
		current    []string
	)
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range lines {
		if IsListItem(line) {
			flush()
			paragraphs = append(paragraphs, line)
			continue
		}
		current = append(current, line)
	}
	flush()

	return paragraphs
}

// Reconstruct returns the ordered chunk texts for lines. Paragraphs are processed
// strictly in sequence so output order follows document order.
func (r *Reconstructor) Reconstruct(ctx context.Context, lines []string) []string {
	var units []string
	for _, para := range r.Paragraphs(lines) {
		if WordCount(para) < r.opts.MinSplitWords {
			units = append(units, para)
			continue
		}
		units = append(units, r.semantic.Split(ctx, para, r.opts.MaxWords)...)
	}

	chunks := make([]string, 0, len(units))
	for _, u := range units {
		u = strings.TrimSpace(u)
		if WordCount(u) >= r.opts.MinChunkWords {
			chunks = append(chunks, u)
		}
	}
	return chunks
}
