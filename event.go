package anychargen

// JobID identifies one generation request. IDs increase with every Start.
type JobID uint64

// EventKind tells a batch delivery apart from a job completion.
type EventKind int

const (
	// EventBatch carries a full batch of exactly BatchSize combinations.
	EventBatch EventKind = iota + 1
	// EventComplete is sent once per finished job and carries the remaining
	// partial batch, possibly empty. No further events follow for that job.
	EventComplete
)

func (k EventKind) String() string {
	switch k {
	case EventBatch:
		return "batch"
	case EventComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Event is a message from a producer to the consumer.
// Ownership of Batch passes to the receiver; the producer keeps no reference to it.
type Event struct {
	JobID JobID
	Kind  EventKind
	Batch []string
	// Emitted is the number of combinations the job has produced so far,
	// including this batch.
	Emitted uint64
}
