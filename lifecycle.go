package anychargen

import (
	"sync"
)

// lifecycleCoordinator encapsulates the shutdown sequence for Scheduler.
// It is a wiring helper: it doesn't own channels; it orchestrates rejection of
// new jobs, cancellation, waiting and channel closure in a deterministic order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	markClosed  func()
	cancel      func()
	producers   *sync.WaitGroup
	closeEvents func()

	once sync.Once
}

func newLifecycleCoordinator(
	markClosed func(),
	cancel func(),
	producers *sync.WaitGroup,
	closeEvents func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		markClosed:  markClosed,
		cancel:      cancel,
		producers:   producers,
		closeEvents: closeEvents,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) mark closed so no new producer can be added
// 2) cancel the parent context of every job
// 3) wait for producers to exit
// 4) close the events channel
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.markClosed != nil {
			lc.markClosed()
		}
		if lc.cancel != nil {
			lc.cancel()
		}
		if lc.producers != nil {
			lc.producers.Wait()
		}
		if lc.closeEvents != nil {
			lc.closeEvents()
		}
	})
}
