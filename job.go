package anychargen

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/marcusdavidalo/anychargen/generator"
)

// job is the state of one generation request. Only its producer goroutine
// touches the generator and the pending batch.
type job struct {
	id       JobID
	alphabet []rune
	length   int
	// total is len(alphabet)^length, or 0 when it does not fit in uint64
	total uint64

	ctx    context.Context
	cancel context.CancelFunc

	// set by Start before cancel when a newer job replaces this one
	superseded atomic.Bool
}

func newJob(parent context.Context, id JobID, alphabet []rune, length int, total uint64) *job {
	ctx, cancel := context.WithCancel(parent)
	return &job{
		id:       id,
		alphabet: alphabet,
		length:   length,
		total:    total,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (j *job) supersede() {
	j.superseded.Store(true)
	j.cancel()
}

// batchCap sizes the next batch so small jobs don't allocate a full batch.
func (j *job) batchCap(size int, emitted uint64) int {
	if j.total == 0 {
		return size
	}
	if remaining := j.total - emitted; remaining < uint64(size) {
		return int(remaining)
	}
	return size
}

// yield pauses the producer after a flush. It returns false if the job was
// stopped while waiting.
func (j *job) yield(d time.Duration) bool {
	if d <= 0 {
		runtime.Gosched()
		return j.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-j.ctx.Done():
		return false
	}
}

// run is the producer loop for j.
func (s *Scheduler) run(j *job) {
	defer j.cancel()

	started := time.Now()
	log := s.logger.With(slog.Uint64("job", uint64(j.id)))

	s.inst.started.Add(1)
	s.inst.active.Add(1)
	defer s.inst.active.Add(-1)

	gen, err := generator.New(j.alphabet, j.length)
	if err != nil {
		// Start validated the request already.
		log.Error("generator rejected validated request", slog.Any("error", err))
		return
	}

	log.Info("generation job started",
		slog.Int("alphabet_size", len(j.alphabet)),
		slog.Int("length", j.length),
		slog.Uint64("total", j.total),
	)

	size := s.config.BatchSize
	batches := 0
	batch := make([]string, 0, j.batchCap(size, 0))

	for combo := range gen.All() {
		batch = append(batch, combo)
		if len(batch) < size {
			continue
		}

		if !s.deliver(j, Event{JobID: j.id, Kind: EventBatch, Batch: batch, Emitted: gen.Emitted()}) {
			s.stopped(log, j, gen.Emitted())
			return
		}
		batches++
		s.inst.batches.Add(1)
		s.inst.emitted.Add(int64(len(batch)))
		log.Debug("batch flushed", slog.Int("batch", batches), slog.Uint64("emitted", gen.Emitted()))

		batch = make([]string, 0, j.batchCap(size, gen.Emitted()))

		if !j.yield(s.config.YieldDelay) {
			s.stopped(log, j, gen.Emitted())
			return
		}
	}

	if !s.deliver(j, Event{JobID: j.id, Kind: EventComplete, Batch: batch, Emitted: gen.Emitted()}) {
		s.stopped(log, j, gen.Emitted())
		return
	}
	if len(batch) > 0 {
		batches++
		s.inst.batches.Add(1)
		s.inst.emitted.Add(int64(len(batch)))
	}

	elapsed := time.Since(started)
	s.inst.completed.Add(1)
	s.inst.duration.Record(elapsed.Seconds())
	log.Info("generation job completed",
		slog.Uint64("emitted", gen.Emitted()),
		slog.Int("batches", batches),
		slog.Duration("elapsed", elapsed),
	)
}

// deliver hands ev to the consumer unless j has been stopped.
// A stopped job never sends, even when a receiver is ready.
func (s *Scheduler) deliver(j *job, ev Event) bool {
	if j.ctx.Err() != nil {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-j.ctx.Done():
		return false
	}
}

func (s *Scheduler) stopped(log *slog.Logger, j *job, emitted uint64) {
	if j.superseded.Load() {
		s.inst.superseded.Add(1)
		log.Info("generation job superseded", slog.Uint64("emitted", emitted))
		return
	}
	log.Info("generation job canceled", slog.Uint64("emitted", emitted))
}
