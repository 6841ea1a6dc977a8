package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/notechunk/internal/model"
)

// Summary collects the results of a full run
type Summary struct {
	Extracted []FileResult
	Chunked   []FileResult
	Duration  time.Duration
}

// Count returns the number of results with status across both stages
func (s *Summary) Count(status model.DocumentStatus) int {
	n := 0
	for _, r := range s.Extracted {
		if r.Status == status {
			n++
		}
	}
	for _, r := range s.Chunked {
		if r.Status == status {
			n++
		}
	}
	return n
}

// TotalChunks returns the number of chunks written
func (s *Summary) TotalChunks() int {
	total := 0
	for _, r := range s.Chunked {
		total += r.Chunks
	}
	return total
}

// Print writes the run banner
func (s *Summary) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "  Run Summary\n")
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "  Files extracted:   %d\n", s.Count(model.StatusExtracted))
	_, _ = fmt.Fprintf(w, "  Unsupported:       %d\n", s.Count(model.StatusUnsupported))
	_, _ = fmt.Fprintf(w, "  Empty:             %d\n", s.Count(model.StatusEmpty))
	_, _ = fmt.Fprintf(w, "  Failed:            %d\n", s.Count(model.StatusFailed))
	_, _ = fmt.Fprintf(w, "  Documents chunked: %d\n", s.Count(model.StatusChunked))
	_, _ = fmt.Fprintf(w, "  Chunks written:    %d\n", s.TotalChunks())
	_, _ = fmt.Fprintf(w, "  Duration:          %v\n", s.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "\n")
}
