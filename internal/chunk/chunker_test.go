package chunk

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/notechunk/internal/fingerprint"
	"github.com/ppiankov/notechunk/internal/noise"
)

func newTestChunker(splitter Splitter) *Chunker {
	opts := DefaultOptions()
	semantic := NewSemanticSplitter(splitter, opts, nil)
	return NewChunker(noise.Default(), NewReconstructor(semantic, opts), nil)
}

func TestChunker_WorkshopScenario(t *testing.T) {
	raw := strings.Join([]string{
		"Réunion:",
		"- Workflow validation requis avant publication.",
		"Les volumes mensuels dépassent 5000 documents et nécessitent un contrôle qualité renforcé avant export vers le système cible.",
	}, "\n")
	stub := &stubSplitter{err: errors.New("offline")}

	chunks := newTestChunker(stub).Chunk(context.Background(), "atelier.txt", raw)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != "- Workflow validation requis avant publication." {
		t.Errorf("list item not kept as its own chunk: %q", chunks[0].Text)
	}
	if strings.Contains(chunks[1].Text, "Workflow") {
		t.Errorf("prose merged with list item: %q", chunks[1].Text)
	}
	for i, c := range chunks {
		if strings.Contains(c.Text, "Réunion") {
			t.Errorf("noise line leaked into chunk %d", i)
		}
		if WordCount(c.Text) < DefaultMinChunkWords {
			t.Errorf("chunk %d has fewer than %d words", i, DefaultMinChunkWords)
		}
		if c.Index != i || c.Total != len(chunks) {
			t.Errorf("chunk %d has index %d total %d", i, c.Index, c.Total)
		}
		if c.ID != fingerprint.Of(c.Text) {
			t.Errorf("chunk %d id does not match text fingerprint", i)
		}
		if c.SourceFile != "atelier.txt" {
			t.Errorf("chunk %d source = %q", i, c.SourceFile)
		}
	}
}

func TestChunker_LongParagraphFailureInjection(t *testing.T) {
	paragraph := longParagraph()
	raw := "Client:\n" + sentStock + "\n" + sentDelivery + "\n" + sentWorkflow + "\n" + sentVolumes

	failing := newTestChunker(&stubSplitter{err: errors.New("timeout")}).Chunk(context.Background(), "n.txt", raw)

	var got []string
	for _, c := range failing {
		got = append(got, c.Text)
	}
	want := SplitBySentences(paragraph, DefaultMaxWords)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("failure injection = %q, want %q", got, want)
	}
}

func TestChunker_EmptyAndNoiseOnly(t *testing.T) {
	c := newTestChunker(nil)
	for _, raw := range []string{"", "   \n\t", "Bonjour\n10:15\nPage 1"} {
		if got := c.Chunk(context.Background(), "vide.txt", raw); len(got) != 0 {
			t.Errorf("Chunk(%q) = %+v, want none", raw, got)
		}
	}
}

func TestChunker_ContiguousIndexes(t *testing.T) {
	var lines []string
	for i := 0; i < 7; i++ {
		lines = append(lines, "- point numéro "+strings.Repeat("x", i+1)+" du relevé de décisions")
	}
	chunks := newTestChunker(nil).Chunk(context.Background(), "liste.txt", strings.Join(lines, "\n"))

	if len(chunks) != 7 {
		t.Fatalf("expected 7 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i || c.Total != 7 {
			t.Errorf("chunk %d: index %d total %d", i, c.Index, c.Total)
		}
	}
}

func TestAssemble_IDIndependentOfPosition(t *testing.T) {
	a := Assemble("a.txt", []string{"premier texte de cinq mots", "texte partagé entre deux documents"})
	b := Assemble("b.txt", []string{"texte partagé entre deux documents"})

	if a[1].ID != b[0].ID {
		t.Errorf("same text produced different ids: %s vs %s", a[1].ID, b[0].ID)
	}
	if Assemble("x.txt", nil) != nil {
		t.Error("expected nil for no texts")
	}
}
