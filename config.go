package anychargen

import (
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/marcusdavidalo/anychargen/metrics"
)

// config holds Scheduler configuration.
type config struct {
	// BatchSize is the number of combinations in every batch except the last.
	// Default: 10000.
	BatchSize int

	// YieldDelay is how long a producer sleeps after each batch flush.
	// Zero still yields the processor once.
	// Default: 1ms.
	YieldDelay time.Duration

	// MaxCombinations rejects requests whose output would be larger.
	// Default: 0 (unbounded).
	MaxCombinations uint64

	// MaxLength rejects requests for longer combinations. A producer allocates
	// O(length) state and every batch holds BatchSize strings of that length.
	// Default: 256.
	MaxLength int

	// EventsBufferSize defines the size of the events channel buffer.
	// Default: 16.
	EventsBufferSize uint

	Logger  *slog.Logger
	Metrics metrics.Provider
}

const (
	DefaultBatchSize  = 10000
	DefaultYieldDelay = time.Millisecond
	DefaultMaxLength  = 256
)

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		BatchSize:        DefaultBatchSize,
		YieldDelay:       DefaultYieldDelay,
		MaxCombinations:  0, // unbounded
		MaxLength:        DefaultMaxLength,
		EventsBufferSize: 16,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:          metrics.NoopProvider{},
	}
}

// validateConfig checks invariants options cannot express on their own.
func validateConfig(cfg *config) error {
	switch {
	case cfg.BatchSize < 1:
		return errorc.With(ErrInvalidConfig, errorc.String("batch_size", strconv.Itoa(cfg.BatchSize)))
	case cfg.YieldDelay < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("yield_delay", cfg.YieldDelay.String()))
	case cfg.MaxLength < 1:
		return errorc.With(ErrInvalidConfig, errorc.String("max_length", strconv.Itoa(cfg.MaxLength)))
	case cfg.Logger == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("", "logger must not be nil"))
	case cfg.Metrics == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("", "metrics provider must not be nil"))
	}
	return nil
}

// Option configures a Scheduler. Use New(ctx, opts...) to apply options.
type Option func(*config) error

// WithBatchSize sets the batch capacity (must be > 0).
func WithBatchSize(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithBatchSize requires n > 0"))
		}
		cfg.BatchSize = n
		return nil
	}
}

// WithYieldDelay sets the pause after every batch flush (must be >= 0).
func WithYieldDelay(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithYieldDelay requires d >= 0"))
		}
		cfg.YieldDelay = d
		return nil
	}
}

// WithMaxCombinations bounds the output of a single job; zero removes the bound.
func WithMaxCombinations(n uint64) Option {
	return func(cfg *config) error { cfg.MaxCombinations = n; return nil }
}

// WithMaxLength bounds the combination length of a single job (must be > 0).
func WithMaxLength(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMaxLength requires n > 0"))
		}
		cfg.MaxLength = n
		return nil
	}
}

// WithEventsBuffer sets the size of the events channel buffer (default 16).
func WithEventsBuffer(size uint) Option {
	return func(cfg *config) error { cfg.EventsBufferSize = size; return nil }
}

// WithLogger sets the logger used for job lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the provider instruments are created from.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
