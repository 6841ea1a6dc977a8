package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ppiankov/notechunk/internal/cache"
	"github.com/ppiankov/notechunk/internal/chunk"
	"github.com/ppiankov/notechunk/internal/llm"
	"github.com/ppiankov/notechunk/internal/logging"
	"github.com/ppiankov/notechunk/internal/metrics"
	"github.com/ppiankov/notechunk/internal/model"
	"github.com/ppiankov/notechunk/internal/pipeline"
	"github.com/ppiankov/notechunk/internal/store"
	"github.com/ppiankov/notechunk/internal/worker"
)

// app holds everything a command needs
type app struct {
	cfg      *model.Config
	logger   logging.Logger
	provider llm.Provider // nil when the model is disabled
	metrics  *metrics.Recorder
	pipeline *pipeline.Pipeline
}

// newApp loads the configuration from v and wires the pipeline. Only
// commands that chunk pass withModel; the extract stage never calls the
// model and must run without credentials.
func newApp(ctx context.Context, v *viper.Viper, withModel bool) (*app, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	var provider llm.Provider
	if withModel {
		provider, err = newProvider(cfg)
		if err != nil {
			return nil, err
		}
		if provider == nil {
			logger.Info("language model disabled, long paragraphs use sentence grouping")
		}
	}

	recorder := metrics.New()

	var splitter chunk.Splitter
	if provider != nil {
		s := llm.NewSplitter(provider, cfg.LLM.Model, llm.SplitterOptions{
			Retries:  cfg.LLM.Retries,
			CacheTTL: cfg.Cache.DiskTTL,
		}).
			WithLimiter(worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)).
			WithObserver(recorder).
			WithLogger(logger.With("provider", provider.Name()))
		if cfg.Cache.Enabled {
			s.WithCache(cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Paths.CacheFile, cfg.Cache.DiskTTL))
		}
		splitter = s
	}

	var index store.Store
	if cfg.Output.SQLitePath != "" {
		db, err := store.OpenSQLite(ctx, cfg.Output.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open chunk index: %w", err)
		}
		index = db
	}

	p, err := pipeline.New(cfg, pipeline.Options{
		Splitter: splitter,
		Index:    index,
		Metrics:  recorder,
		Logger:   logger,
		Progress: os.Stderr,
	})
	if err != nil {
		if index != nil {
			_ = index.Close()
		}
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		metrics:  recorder,
		pipeline: p,
	}, nil
}

// newProvider builds the configured provider, nil for "none"
func newProvider(cfg *model.Config) (llm.Provider, error) {
	llmCfg := llm.ResolveAPIKey(llm.ConfigFromModel(cfg.LLM))
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return provider, nil
}

// close writes metrics and releases the stores
func (a *app) close() {
	if err := a.pipeline.WriteMetrics(); err != nil {
		a.logger.Warn("metrics not written", "error", err)
	}
	if err := a.pipeline.Close(); err != nil {
		a.logger.Warn("close stores", "error", err)
	}
}
