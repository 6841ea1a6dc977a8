// Package pipeline runs the extract and chunk stages over the configured
// directories.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/notechunk/internal/chunk"
	"github.com/ppiankov/notechunk/internal/extract"
	"github.com/ppiankov/notechunk/internal/logging"
	"github.com/ppiankov/notechunk/internal/metrics"
	"github.com/ppiankov/notechunk/internal/model"
	"github.com/ppiankov/notechunk/internal/noise"
	"github.com/ppiankov/notechunk/internal/store"
	"github.com/ppiankov/notechunk/internal/worker"
)

const previewRunes = 200

// ErrDuplicateName marks an input whose output file would overwrite the
// output of another input with the same stem
var ErrDuplicateName = errors.New("duplicate output name")

// Options carries the collaborators of a pipeline. Every field is optional.
type Options struct {
	// Splitter cuts long paragraphs; nil sends them to the sentence fallback
	Splitter chunk.Splitter

	// Index receives the chunks in addition to the JSON artifacts
	Index store.Store

	Registry *extract.Registry
	Metrics  *metrics.Recorder
	Logger   logging.Logger

	// Progress receives the ✓ / ✗ / ⚠️ lines, os.Stderr when nil
	Progress io.Writer
}

// Pipeline orchestrates extraction and chunking
type Pipeline struct {
	config   *model.Config
	registry *extract.Registry
	loader   *Loader
	chunker  *chunk.Chunker
	json     *store.JSONWriter
	store    store.Store
	metrics  *metrics.Recorder
	logger   logging.Logger
	progress io.Writer
}

// FileResult is the outcome of one file in one stage
type FileResult struct {
	Source string
	Output string
	Status model.DocumentStatus
	Chunks int
	Err    error
}

// New creates a pipeline for cfg
func New(cfg *model.Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, pattern := range cfg.Paths.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad include pattern %q", model.ErrInvalidConfig, pattern)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	registry := opts.Registry
	if registry == nil {
		registry = extract.DefaultRegistry()
	}
	progress := opts.Progress
	if progress == nil {
		progress = os.Stderr
	}

	filter, err := noise.FromConfig(cfg.Noise, cfg.Chunking.MinLineChars)
	if err != nil {
		return nil, fmt.Errorf("noise rules: %w", err)
	}
	chunkOpts := chunk.OptionsFromConfig(cfg.Chunking)
	semantic := chunk.NewSemanticSplitter(opts.Splitter, chunkOpts, logger)
	if opts.Metrics != nil {
		semantic.SetObserver(opts.Metrics)
	}
	chunker := chunk.NewChunker(filter, chunk.NewReconstructor(semantic, chunkOpts), logger)

	jsonWriter := store.NewJSONWriter(cfg.Paths.ChunksDir)
	stores := store.Multi{jsonWriter}
	if opts.Index != nil {
		stores = append(stores, opts.Index)
	}

	return &Pipeline{
		config:   cfg,
		registry: registry,
		loader:   NewLoader(0),
		chunker:  chunker,
		json:     jsonWriter,
		store:    stores,
		metrics:  opts.Metrics,
		logger:   logger,
		progress: progress,
	}, nil
}

// Close releases the stores
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// ExtractAll extracts every regular file of the raw directory matching the
// include patterns into <stem>.txt files of the extracted directory.
// Per-file problems are reported in the results, never returned.
func (p *Pipeline) ExtractAll(ctx context.Context) ([]FileResult, error) {
	rawDir := p.config.Paths.RawDir
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw directory: %w", err)
	}
	sources, duplicates := p.selectSources(rawDir, entries)
	if len(sources) == 0 && len(duplicates) == 0 {
		p.logger.Info("no input files", "dir", rawDir)
		return []FileResult{}, nil
	}

	if err := os.MkdirAll(p.config.Paths.ExtractedDir, 0755); err != nil {
		return nil, fmt.Errorf("create extracted dir: %w", err)
	}

	results := make([]FileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency.Workers)
	for i, name := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.extractOne(filepath.Join(rawDir, name))
			return nil
		})
	}
	err = g.Wait()

	done := results[:0]
	for _, r := range results {
		if r.Source != "" {
			done = append(done, r)
		}
	}
	done = append(done, duplicates...)
	p.reportExtract(done)
	if err != nil {
		return done, fmt.Errorf("extract: %w", err)
	}
	return done, nil
}

// selectSources returns the regular files matching an include pattern.
// Entries come sorted by name; when two extractable files share a stem the
// first one keeps <stem>.txt and the others are failed instead of
// overwriting it.
func (p *Pipeline) selectSources(dir string, entries []fs.DirEntry) ([]string, []FileResult) {
	var names []string
	var duplicates []FileResult
	owners := make(map[string]string)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !p.included(entry.Name()) {
			continue
		}
		// unsupported files write nothing, so they never claim a stem
		if p.registry.Supports(filepath.Join(dir, entry.Name())) {
			key := outputKey(entry.Name())
			if owner, taken := owners[key]; taken {
				duplicates = append(duplicates, p.duplicate(entry.Name(), owner, entry.Name(), stem(entry.Name())+".txt"))
				continue
			}
			owners[key] = entry.Name()
		}
		names = append(names, entry.Name())
	}
	return names, duplicates
}

func (p *Pipeline) included(name string) bool {
	for _, pattern := range p.config.Paths.Include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (p *Pipeline) duplicate(source, owner, path, output string) FileResult {
	err := fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateName, owner, path, output)
	p.logger.Warn("duplicate output name, skipped", "file", path, "kept", owner, "output", output)
	p.metrics.ObserveDocument(model.StatusFailed, 0)
	return FileResult{Source: source, Status: model.StatusFailed, Err: err}
}

// Formats lists the file extensions the extract stage understands
func (p *Pipeline) Formats() []string {
	return p.registry.Extensions()
}

func (p *Pipeline) extractOne(path string) FileResult {
	res := FileResult{Source: filepath.Base(path)}

	text, err := p.registry.Extract(path)
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		p.logger.Warn("unsupported format, skipped", "file", res.Source)
		res.Status = model.StatusUnsupported
		res.Err = err
		p.metrics.ObserveDocument(res.Status, 0)
		return res
	case err != nil:
		p.logger.Warn("extraction failed, keeping empty text", "file", res.Source, "error", err)
		res.Status = model.StatusFailed
		res.Err = err
		p.metrics.ObserveDocument(res.Status, 0)
		text = ""
	}

	out := filepath.Join(p.config.Paths.ExtractedDir, stem(path)+".txt")
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		res.Status = model.StatusFailed
		res.Err = fmt.Errorf("write %s: %w", out, err)
		return res
	}
	res.Output = out

	if res.Status != "" {
		return res
	}
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("extracted text is empty", "file", res.Source)
		res.Status = model.StatusEmpty
		return res
	}
	res.Status = model.StatusExtracted
	p.logger.Debug("extracted", "file", res.Source, "chars", len([]rune(text)), "preview", preview(text))
	return res
}

// ChunkAll chunks every *.txt file of the extracted directory
func (p *Pipeline) ChunkAll(ctx context.Context) ([]FileResult, error) {
	dir := p.config.Paths.ExtractedDir
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("read extracted directory: %w", err)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "*.txt", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list extracted files: %w", err)
	}
	sort.Strings(matches)

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, m)
	}
	return p.ChunkFiles(ctx, paths)
}

// ChunkFiles chunks the given text files and saves their chunks. Documents run
// through the worker pool; results keep the order of paths.
func (p *Pipeline) ChunkFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	docs := make([]model.Document, 0, len(paths))
	slots := make([]int, 0, len(paths))
	owners := make(map[string]string)

	for i, path := range paths {
		doc, err := p.loader.Load(path)
		results[i].Source = doc.Name
		key := outputKey(doc.Name)
		if owner, taken := owners[key]; taken {
			results[i] = p.duplicate(doc.Name, owner, path, filepath.Base(p.json.Path(doc.Name)))
			continue
		}
		owners[key] = path
		if err != nil {
			p.logger.Warn("cannot read document", "file", doc.Name, "error", err)
			results[i].Status = model.StatusFailed
			results[i].Err = err
			p.metrics.ObserveDocument(model.StatusFailed, 0)
			continue
		}
		if strings.TrimSpace(doc.Text) == "" {
			p.logger.Warn("empty document, skipped", "file", doc.Name)
			results[i].Status = model.StatusEmpty
			p.metrics.ObserveDocument(model.StatusEmpty, 0)
			continue
		}
		docs = append(docs, doc)
		slots = append(slots, i)
	}

	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	for j, r := range processor.ProcessDocuments(ctx, docs) {
		res := &results[slots[j]]
		if r.Error != nil {
			res.Status = model.StatusFailed
			res.Err = r.Error
			p.metrics.ObserveDocument(model.StatusFailed, 0)
			continue
		}
		if err := p.store.SaveChunks(ctx, r.Document.Name, r.Chunks); err != nil {
			res.Status = model.StatusFailed
			res.Err = fmt.Errorf("save chunks: %w", err)
			p.metrics.ObserveDocument(model.StatusFailed, 0)
			continue
		}
		res.Status = model.StatusChunked
		res.Chunks = len(r.Chunks)
		res.Output = p.json.Path(r.Document.Name)
		p.metrics.ObserveDocument(model.StatusChunked, res.Chunks)
	}

	p.reportChunks(results)
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("chunk: %w", err)
	}
	return results, nil
}

// ChunkDocument chunks one document. It satisfies worker.DocumentHandler.
// A cancelled context fails the document instead of keeping fallback output.
func (p *Pipeline) ChunkDocument(ctx context.Context, doc model.Document) ([]model.Chunk, error) {
	chunks := p.chunker.Chunk(ctx, doc.Name, doc.Text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Run runs the extract stage then the chunk stage
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	extracted, err := p.ExtractAll(ctx)
	summary.Extracted = extracted
	if err != nil {
		summary.Duration = time.Since(start)
		return summary, err
	}

	chunked, err := p.ChunkAll(ctx)
	summary.Chunked = chunked
	summary.Duration = time.Since(start)
	return summary, err
}

// WriteMetrics writes the metrics textfile when one is configured
func (p *Pipeline) WriteMetrics() error {
	path := p.config.Output.MetricsFile
	if path == "" || p.metrics == nil {
		return nil
	}
	if err := p.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	p.logger.Debug("metrics written", "path", path)
	return nil
}

func (p *Pipeline) reportExtract(results []FileResult) {
	for _, r := range results {
		switch r.Status {
		case model.StatusExtracted:
			_, _ = fmt.Fprintf(p.progress, "✓ %s → %s\n", r.Source, filepath.Base(r.Output))
		case model.StatusEmpty:
			_, _ = fmt.Fprintf(p.progress, "⚠️  %s: no text extracted\n", r.Source)
		case model.StatusUnsupported:
			_, _ = fmt.Fprintf(p.progress, "⚠️  %s: unsupported format, skipped\n", r.Source)
		default:
			_, _ = fmt.Fprintf(p.progress, "✗ %s: %v\n", r.Source, r.Err)
		}
	}
}

func (p *Pipeline) reportChunks(results []FileResult) {
	for _, r := range results {
		switch r.Status {
		case model.StatusChunked:
			_, _ = fmt.Fprintf(p.progress, "✓ %s → %d chunks\n", r.Source, r.Chunks)
		case model.StatusEmpty:
			_, _ = fmt.Fprintf(p.progress, "⚠️  %s: empty, skipped\n", r.Source)
		default:
			_, _ = fmt.Fprintf(p.progress, "✗ %s: %v\n", r.Source, r.Err)
		}
	}
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}
