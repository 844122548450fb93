// Package metrics defines the instruments the scheduler records into.
//
// Provider implementations must be safe for concurrent use. NoopProvider is
// the default; BasicProvider keeps in-memory values that can be read back
// through Snapshot methods.
package metrics

// Instrument names recorded by the scheduler.
const (
	JobsStarted         = "jobs_started"
	JobsCompleted       = "jobs_completed"
	JobsSuperseded      = "jobs_superseded"
	JobsActive          = "jobs_active"
	BatchesFlushed      = "batches_flushed"
	CombinationsEmitted = "combinations_emitted"
	JobDurationSeconds  = "job_duration_seconds"
)

// Provider constructs named instruments.
// Asking twice for the same name returns the same instrument.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a value that moves both ways, such as active jobs.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records float64 measurements, such as durations in seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig is advisory metadata attached to an instrument.
type InstrumentConfig struct {
	Description string
	Unit        string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets the instrument description.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets the instrument unit (e.g., "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

func buildConfig(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
