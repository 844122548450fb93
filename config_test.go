package anychargen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcusdavidalo/anychargen/metrics"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if cfg.BatchSize != 10000 {
		t.Fatalf("BatchSize default = %d; want 10000", cfg.BatchSize)
	}
	if cfg.YieldDelay != time.Millisecond {
		t.Fatalf("YieldDelay default = %v; want 1ms", cfg.YieldDelay)
	}
	if cfg.MaxCombinations != 0 {
		t.Fatalf("MaxCombinations default = %d; want 0", cfg.MaxCombinations)
	}
	if cfg.MaxLength != DefaultMaxLength {
		t.Fatalf("MaxLength default = %d; want %d", cfg.MaxLength, DefaultMaxLength)
	}
	if cfg.EventsBufferSize != 16 {
		t.Fatalf("EventsBufferSize default = %d; want 16", cfg.EventsBufferSize)
	}
	if cfg.Logger == nil {
		t.Fatalf("Logger default is nil")
	}
	if _, ok := cfg.Metrics.(metrics.NoopProvider); !ok {
		t.Fatalf("Metrics default = %T; want metrics.NoopProvider", cfg.Metrics)
	}
}

func TestValidateConfig_RejectsBrokenState(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config)
	}{
		{"zero batch size", func(c *config) { c.BatchSize = 0 }},
		{"negative yield delay", func(c *config) { c.YieldDelay = -time.Second }},
		{"zero max length", func(c *config) { c.MaxLength = 0 }},
		{"nil logger", func(c *config) { c.Logger = nil }},
		{"nil metrics", func(c *config) { c.Metrics = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, validateConfig(&cfg), ErrInvalidConfig)
		})
	}
}

func TestNew_InvalidOptions_ReturnsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{"batch size zero", WithBatchSize(0)},
		{"batch size negative", WithBatchSize(-5)},
		{"negative yield delay", WithYieldDelay(-time.Millisecond)},
		{"max length zero", WithMaxLength(0)},
		{"nil logger", WithLogger(nil)},
		{"nil metrics", WithMetrics(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.opt)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Nil(t, s)
		})
	}
}

func TestNew_ValidOptions_Succeeds(t *testing.T) {
	t.Parallel()

	s, err := New(
		context.Background(),
		WithBatchSize(3),
		WithYieldDelay(0),
		WithMaxCombinations(100),
		WithMaxLength(8),
		WithEventsBuffer(0),
		WithMetrics(metrics.NewBasicProvider()),
		nil, // ignored
	)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	require.Equal(t, 3, s.config.BatchSize)
	require.Equal(t, time.Duration(0), s.config.YieldDelay)
	require.EqualValues(t, 100, s.config.MaxCombinations)
	require.Equal(t, 8, s.config.MaxLength)
	require.Equal(t, 0, cap(s.events))
}
