package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ppiankov/notechunk/internal/cache"
	"github.com/ppiankov/notechunk/internal/chunk"
	"github.com/ppiankov/notechunk/internal/logging"
)

const defaultRetryBaseDelay = 500 * time.Millisecond

// RateLimiter throttles model calls per provider
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// RequestObserver is notified of every model call and cache hit
type RequestObserver interface {
	ObserveRequest(provider string, duration time.Duration, err error)
	ObserveCacheHit(provider string)
}

var _ chunk.Splitter = (*Splitter)(nil)

// SplitterOptions tunes the model-backed splitter
type SplitterOptions struct {
	// Retries is the number of extra attempts on retryable errors
	Retries int

	// RetryBaseDelay is the first backoff delay, doubled on each retry
	RetryBaseDelay time.Duration

	// CacheTTL is the lifetime of a stored split
	CacheTTL time.Duration
}

// Splitter asks a Provider to cut a paragraph into blocks.
// It satisfies chunk.Splitter.
type Splitter struct {
	provider Provider
	model    string
	opts     SplitterOptions
	limiter  RateLimiter
	cache    cache.Cache
	observer RequestObserver
	logger   logging.Logger
}

// NewSplitter creates a splitter; model is used for cache keys and requests
func NewSplitter(provider Provider, model string, opts SplitterOptions) *Splitter {
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Splitter{
		provider: provider,
		model:    model,
		opts:     opts,
		logger:   logging.Discard(),
	}
}

// WithLimiter throttles calls through l
func (s *Splitter) WithLimiter(l RateLimiter) *Splitter {
	s.limiter = l
	return s
}

// WithCache stores successful splits in c
func (s *Splitter) WithCache(c cache.Cache) *Splitter {
	s.cache = c
	return s
}

// WithObserver reports calls to o
func (s *Splitter) WithObserver(o RequestObserver) *Splitter {
	s.observer = o
	return s
}

// WithLogger sets the logger
func (s *Splitter) WithLogger(l logging.Logger) *Splitter {
	if l != nil {
		s.logger = l
	}
	return s
}

// Split returns the model's blocks for paragraph. A response without any
// block is reported as ErrNoBlocks.
func (s *Splitter) Split(ctx context.Context, paragraph string, maxWords int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := s.provider.Name()

	var key string
	if s.cache != nil {
		key = cache.SplitKey(name, s.model, maxWords, paragraph)
		if blocks, ok := s.cache.Get(key); ok && len(blocks) > 0 {
			if s.observer != nil {
				s.observer.ObserveCacheHit(name)
			}
			s.logger.Debug("split cache hit", "provider", name, "blocks", len(blocks))
			return blocks, nil
		}
	}

	req := CompletionRequest{
		Prompt: BuildSplitPrompt(paragraph, maxWords),
		System: splitSystemPrompt,
		Model:  s.model,
	}

	var blocks []string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.opts.Retries), retry.NewExponential(s.opts.RetryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx, name); err != nil {
				return fmt.Errorf("rate limit: %w", err)
			}
		}

		start := time.Now()
		resp, err := s.provider.Complete(ctx, req)
		if s.observer != nil {
			s.observer.ObserveRequest(name, time.Since(start), err)
		}
		if err != nil {
			if IsRetryable(err) {
				s.logger.Debug("model call failed, retrying", "provider", name, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}

		blocks = ParseBlocks(resp.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	if s.cache != nil {
		if err := s.cache.Set(key, blocks, s.opts.CacheTTL); err != nil {
			s.logger.Warn("split cache write failed", "error", err)
		}
	}
	return blocks, nil
}
