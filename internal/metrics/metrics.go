// Package metrics records pipeline counters in a Prometheus registry and
// writes them as a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/notechunk/internal/chunk"
	"github.com/ppiankov/notechunk/internal/model"
)

const namespace = "notechunk"

// Recorder holds the run's collectors. The zero value is not usable; a nil
// *Recorder is, and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	chunks    prometheus.Counter
	splits    *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks emitted.",
		}),
		splits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_splits_total",
			Help:      "Paragraph splits, by the path that produced the units.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_cache_hits_total",
			Help:      "Splits served from the cache.",
		}, []string{"provider"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Language-model calls, by provider and result.",
		}, []string{"provider", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Language-model call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider"}),
	}
	r.registry.MustRegister(r.documents, r.chunks, r.splits, r.cacheHits, r.requests, r.latency)
	return r
}

// ObserveDocument counts one processed document and its chunks
func (r *Recorder) ObserveDocument(status model.DocumentStatus, chunks int) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(string(status)).Inc()
	if chunks > 0 {
		r.chunks.Add(float64(chunks))
	}
}

// ObserveSplit implements chunk.Observer
func (r *Recorder) ObserveSplit(outcome chunk.SplitOutcome) {
	if r == nil {
		return
	}
	r.splits.WithLabelValues(string(outcome)).Inc()
}

// ObserveRequest records one model call
func (r *Recorder) ObserveRequest(provider string, d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.requests.WithLabelValues(provider, result).Inc()
	r.latency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveCacheHit records a split served from the cache
func (r *Recorder) ObserveCacheHit(provider string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(provider).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
