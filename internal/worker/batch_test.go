package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/notechunk/internal/model"
)

// mockHandler turns each document into one chunk carrying its text
type mockHandler struct {
	failOn string
	delay  func(name string) time.Duration
	calls  int32
}

func (m *mockHandler) ChunkDocument(ctx context.Context, doc model.Document) ([]model.Chunk, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay != nil {
		time.Sleep(m.delay(doc.Name))
	}
	if doc.Name == m.failOn {
		return nil, errors.New("chunk error")
	}
	return []model.Chunk{{Text: doc.Text, SourceFile: doc.Name, Total: 1}}, nil
}

func docs(names ...string) []model.Document {
	out := make([]model.Document, len(names))
	for i, n := range names {
		out[i] = model.Document{Name: n, Text: "texte de " + n}
	}
	return out
}

func TestBatchProcessor_ProcessDocuments(t *testing.T) {
	handler := &mockHandler{}
	processor := NewBatchProcessor(handler, 2)

	results := processor.ProcessDocuments(context.Background(), docs("a.txt", "b.txt", "c.txt"))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Document.Name, res.Error)
		}
		if len(res.Chunks) != 1 || res.Chunks[0].SourceFile != res.Document.Name {
			t.Errorf("unexpected chunks for %s: %+v", res.Document.Name, res.Chunks)
		}
	}
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	// earlier documents finish last
	handler := &mockHandler{delay: func(name string) time.Duration {
		switch name {
		case "a.txt":
			return 30 * time.Millisecond
		case "b.txt":
			return 15 * time.Millisecond
		}
		return 0
	}}
	processor := NewBatchProcessor(handler, 3)

	results := processor.ProcessDocuments(context.Background(), docs("a.txt", "b.txt", "c.txt"))

	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if results[i].Document.Name != want || results[i].Index != i {
			t.Errorf("result %d = %s (index %d), want %s", i, results[i].Document.Name, results[i].Index, want)
		}
	}
}

func TestBatchProcessor_ErrorIsolated(t *testing.T) {
	handler := &mockHandler{failOn: "b.txt"}
	processor := NewBatchProcessor(handler, 2)

	results := processor.ProcessDocuments(context.Background(), docs("a.txt", "b.txt", "c.txt"))

	for _, res := range results {
		failed := res.GetError() != nil
		if failed != (res.Document.Name == "b.txt") {
			t.Errorf("%s: error = %v", res.Document.Name, res.Error)
		}
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockHandler{}, 2)
	results := processor.ProcessDocuments(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", results)
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockHandler{}, 1)
	results := processor.ProcessDocuments(ctx, docs("a.txt", "b.txt"))

	if len(results) != 2 {
		t.Fatalf("expected a result per document, got %d", len(results))
	}
	for _, res := range results {
		if res == nil {
			t.Fatal("nil result")
		}
		if res.Error == nil && len(res.Chunks) == 0 {
			t.Errorf("%s has neither chunks nor error", res.Document.Name)
		}
	}
}

func TestReadPathsFromFile(t *testing.T) {
	content := strings.Join([]string{
		"# notes du lundi",
		"data/notes_raw/atelier1.txt",
		"",
		"  data/notes_raw/atelier2.pdf  ",
		"data/notes_raw/atelier1.txt",
	}, "\n")
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(path)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}
	want := []string{"data/notes_raw/atelier1.txt", "data/notes_raw/atelier2.pdf"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
