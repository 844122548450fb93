// Package anychargen generates every fixed-length string over a caller-supplied
// alphabet, with repetition, and streams the results in bounded batches.
//
// Constructors
//   - New(ctx, opts ...Option): builds a Scheduler. ctx is the parent of every
//     generation job the Scheduler runs.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created Scheduler:
//   - BatchSize: 10000
//   - YieldDelay: 1ms
//   - MaxCombinations: 0 (unbounded)
//   - MaxLength: 256
//   - EventsBufferSize: 16
//   - Logger: discards all records
//   - Metrics: no-op provider
//
// Jobs
// Start(alphabet, length) validates the request and launches one producer
// goroutine. The producer enumerates combinations in lexicographic order of
// alphabet index, appends them to a batch and sends an EventBatch each time the
// batch reaches BatchSize, sleeping YieldDelay after every flush. When the
// enumeration is exhausted it sends exactly one EventComplete carrying the final
// partial batch, which may be empty.
//
// Only one job is active at a time. Calling Start again supersedes the running
// job: its producer stops at the next batch boundary or during its yield sleep.
// Events the old job already queued are not withdrawn: up to EventsBufferSize+1
// of them may still be received after Start returns, so consumers compare
// Event.JobID with Current() and drop stale events.
//
// Channel lifecycle
// Events() is owned by the Scheduler and closed by Close() after every producer
// has exited. Producers block while the events buffer is full, so consumers must
// keep draining Events() until they see the completion they wait for.
//
// Combinatorial growth
// A job yields len(alphabet)^length combinations. Nothing bounds that number
// unless WithMaxCombinations is set, in which case Start rejects larger requests
// with ErrOutputTooLarge. Lengths above MaxLength are always rejected the same
// way, since a one-character alphabet passes any combination bound.
package anychargen
