package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory, keyed by name.
// Each instrument kind has its own namespace.
type BasicProvider struct {
	counters   registry[*BasicCounter]
	updowns    registry[*BasicUpDownCounter]
	histograms registry[*BasicHistogram]
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   registry[*BasicCounter]{newFn: func() *BasicCounter { return &BasicCounter{} }},
		updowns:    registry[*BasicUpDownCounter]{newFn: func() *BasicUpDownCounter { return &BasicUpDownCounter{} }},
		histograms: registry[*BasicHistogram]{newFn: func() *BasicHistogram { return &BasicHistogram{} }},
	}
}

func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return p.counters.get(name, opts)
}

func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return p.updowns.get(name, opts)
}

func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return p.histograms.get(name, opts)
}

// CounterValue returns the current value of the named counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	if c, ok := p.counters.lookup(name); ok {
		return c.Snapshot()
	}
	return 0
}

// UpDownValue returns the current value of the named up/down counter, or 0.
func (p *BasicProvider) UpDownValue(name string) int64 {
	if u, ok := p.updowns.lookup(name); ok {
		return u.Snapshot()
	}
	return 0
}

// HistogramValue returns a snapshot of the named histogram, or a zero snapshot.
func (p *BasicProvider) HistogramValue(name string) HistSnapshot {
	if h, ok := p.histograms.lookup(name); ok {
		return h.Snapshot()
	}
	return HistSnapshot{}
}

// Config returns the metadata the named instrument was created with.
func (p *BasicProvider) Config(name string) (InstrumentConfig, bool) {
	for _, r := range []interface{ meta(string) (InstrumentConfig, bool) }{&p.counters, &p.updowns, &p.histograms} {
		if cfg, ok := r.meta(name); ok {
			return cfg, true
		}
	}
	return InstrumentConfig{}, false
}

// registry creates instruments on first use and returns the same one afterwards.
type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	cfgs  map[string]InstrumentConfig
	newFn func() T
}

func (r *registry[T]) lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	return v, ok
}

func (r *registry[T]) meta(name string) (InstrumentConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.cfgs[name]
	return cfg, ok
}

func (r *registry[T]) get(name string, opts []InstrumentOption) T {
	if v, ok := r.lookup(name); ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// re-check after acquiring write lock
	if v, ok := r.items[name]; ok {
		return v
	}
	if r.items == nil {
		r.items = make(map[string]T)
		r.cfgs = make(map[string]InstrumentConfig)
	}
	v := r.newFn()
	r.items[name] = v
	r.cfgs[name] = buildConfig(opts)
	return v
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct{ val atomic.Int64 }

func (c *BasicCounter) Add(n int64)     { c.val.Add(n) }
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct{ val atomic.Int64 }

func (u *BasicUpDownCounter) Add(n int64)     { u.val.Add(n) }
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu   sync.Mutex
	snap HistSnapshot
}

// HistSnapshot is a copy of a BasicHistogram's state.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns Sum/Count, or 0 for an empty snapshot.
func (s HistSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap.Count == 0 || v < h.snap.Min {
		h.snap.Min = v
	}
	if h.snap.Count == 0 || v > h.snap.Max {
		h.snap.Max = v
	}
	h.snap.Count++
	h.snap.Sum += v
}

func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}
