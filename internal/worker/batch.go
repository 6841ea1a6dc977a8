package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/notechunk/internal/model"
)

// DocumentHandler chunks one extracted document
type DocumentHandler interface {
	ChunkDocument(ctx context.Context, doc model.Document) ([]model.Chunk, error)
}

// DocumentJob chunks a single document
type DocumentJob struct {
	Index    int
	Document model.Document
	Handler  DocumentHandler
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	chunks, err := j.Handler.ChunkDocument(ctx, j.Document)
	return &DocumentResult{
		Index:    j.Index,
		Document: j.Document,
		Chunks:   chunks,
		Error:    err,
	}
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Index    int
	Document model.Document
	Chunks   []model.Chunk
	Error    error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor chunks multiple documents concurrently
type BatchProcessor struct {
	handler     DocumentHandler
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(handler DocumentHandler, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		handler:     handler,
		concurrency: concurrency,
	}
}

// ProcessDocuments chunks every document and returns results in input order.
// Documents that never ran because ctx was cancelled carry ctx's error.
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, docs []model.Document) []*DocumentResult {
	if len(docs) == 0 {
		return []*DocumentResult{}
	}

	jobs := make([]Job, len(docs))
	for i, doc := range docs {
		jobs[i] = &DocumentJob{Index: i, Document: doc, Handler: b.handler}
	}

	ordered := make([]*DocumentResult, len(docs))
	for _, result := range NewPool(ctx, b.concurrency).Run(jobs) {
		r := result.(*DocumentResult)
		ordered[r.Index] = r
	}

	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("document %s was not processed", docs[i].Name)
			}
			ordered[i] = &DocumentResult{Index: i, Document: docs[i], Error: err}
		}
	}
	return ordered
}

// ReadPathsFromFile reads file paths from a list file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
