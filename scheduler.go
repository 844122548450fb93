package anychargen

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/marcusdavidalo/anychargen/generator"
	"github.com/marcusdavidalo/anychargen/metrics"
)

// Scheduler runs at most one generation job at a time and delivers its output
// as batches on the Events channel. Methods are safe for concurrent use.
type Scheduler struct {
	// noCopy prevents accidental copying of the controller.
	//go:nocopy
	nc noCopy

	config *config
	logger *slog.Logger
	inst   instruments

	// parent of every job context; canceled by Close
	ctx    context.Context
	cancel context.CancelFunc

	// guards current, lastID and closed
	mu      sync.Mutex
	current *job
	lastID  JobID
	closed  bool

	events chan Event

	// running producer goroutines
	producers sync.WaitGroup

	lifecycle *lifecycleCoordinator
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type instruments struct {
	started    metrics.Counter
	completed  metrics.Counter
	superseded metrics.Counter
	batches    metrics.Counter
	emitted    metrics.Counter
	active     metrics.UpDownCounter
	duration   metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		started:    p.Counter(metrics.JobsStarted, metrics.WithUnit("1")),
		completed:  p.Counter(metrics.JobsCompleted, metrics.WithUnit("1")),
		superseded: p.Counter(metrics.JobsSuperseded, metrics.WithUnit("1")),
		batches:    p.Counter(metrics.BatchesFlushed, metrics.WithUnit("1")),
		emitted:    p.Counter(metrics.CombinationsEmitted, metrics.WithUnit("1")),
		active:     p.UpDownCounter(metrics.JobsActive, metrics.WithUnit("1")),
		duration: p.Histogram(metrics.JobDurationSeconds,
			metrics.WithUnit("seconds"),
			metrics.WithDescription("wall time from job start to completion"),
		),
	}
}

// New creates a Scheduler using functional options.
// Jobs started on it stop when ctx is done or when Close is called.
func New(ctx context.Context, opts ...Option) (*Scheduler, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	s := &Scheduler{
		config: &cfg,
		logger: cfg.Logger,
		inst:   newInstruments(cfg.Metrics),
		events: make(chan Event, cfg.EventsBufferSize),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.lifecycle = newLifecycleCoordinator(
		s.markClosed,
		s.cancel,
		&s.producers,
		func() { close(s.events) },
	)
	return s, nil
}

// Start validates the request and begins generating asynchronously.
//
// Semantics:
//   - An empty alphabet or a length below 1 returns ErrInvalidInput; nothing is generated
//     and the current job, if any, keeps running.
//   - A length above MaxLength returns ErrOutputTooLarge.
//   - When MaxCombinations is set and len(alphabet)^length exceeds it, ErrOutputTooLarge is returned.
//   - After Close, or once the parent context is done, ErrClosed is returned.
//   - Otherwise the current job is superseded and the new job's ID is returned.
//
// Duplicate characters in alphabet are accepted and yield duplicate combinations.
func (s *Scheduler) Start(alphabet string, length int) (JobID, error) {
	chars := []rune(alphabet)
	total, err := s.validate(chars, length)
	if err != nil {
		s.logger.Error("generation request rejected",
			slog.Any("error", err),
			slog.Int("alphabet_size", len(chars)),
			slog.Int("length", length),
		)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return 0, ErrClosed
	}

	if prev := s.current; prev != nil {
		prev.supersede()
	}

	s.lastID++
	j := newJob(s.ctx, s.lastID, chars, length, total)
	s.current = j

	s.producers.Add(1)
	go func() {
		defer s.producers.Done()
		s.run(j)
	}()

	return j.id, nil
}

// validate checks the request and returns the expected number of combinations.
// total is 0 when the count does not fit in uint64.
func (s *Scheduler) validate(chars []rune, length int) (total uint64, err error) {
	if len(chars) == 0 {
		return 0, errorc.With(ErrInvalidInput, errorc.String("alphabet", "must not be empty"))
	}
	if length < 1 {
		return 0, errorc.With(ErrInvalidInput, errorc.String("length", strconv.Itoa(length)))
	}

	if limit := s.config.MaxLength; length > limit {
		return 0, errorc.With(ErrOutputTooLarge, errorc.String("max_length", strconv.Itoa(limit)))
	}

	total, ok := generator.Count(len(chars), length)
	if limit := s.config.MaxCombinations; limit > 0 && (!ok || total > limit) {
		return 0, errorc.With(ErrOutputTooLarge, errorc.String("limit", strconv.FormatUint(limit, 10)))
	}
	if !ok {
		total = 0
	}
	return total, nil
}

// Events returns the channel batches and completions are delivered on.
// It is closed by Close once every producer has exited.
func (s *Scheduler) Events() <-chan Event { return s.events }

// Current returns the ID of the newest job, or 0 if Start never succeeded.
func (s *Scheduler) Current() JobID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID
}

// Close stops every job and closes the events channel.
//
// Semantics:
//   - Idempotent and safe for concurrent use.
//   - Rejects further Start calls with ErrClosed.
//   - Cancels the internal context; producers exit at their next send or yield.
//   - Waits for all producers to exit, then closes Events().
func (s *Scheduler) Close() {
	s.lifecycle.Close()
}

func (s *Scheduler) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
