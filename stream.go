package anychargen

import "context"

// Stream runs a single job on a fresh Scheduler configured by opts and returns
// its non-empty batches on a channel. A non-nil error is returned only for
// setup failures (invalid options or input).
//
// Lifecycle:
//   - Constructs a Scheduler via New(ctx, opts...) and starts the job.
//   - Spawns a forwarder goroutine that moves batches from Events() to the returned
//     channel. It stops after the completion event, or when ctx is done, then closes
//     the Scheduler and the returned channel.
//   - A consumer that stops reading must cancel ctx so the forwarder can exit.
func Stream(ctx context.Context, alphabet string, length int, opts ...Option) (<-chan []string, error) {
	s, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if _, err = s.Start(alphabet, length); err != nil {
		s.Close()
		return nil, err
	}

	out := make(chan []string)
	go func() {
		defer close(out)
		defer s.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-s.Events():
				if !ok {
					return
				}
				if len(ev.Batch) > 0 {
					select {
					case out <- ev.Batch:
					case <-ctx.Done():
						return
					}
				}
				if ev.Kind == EventComplete {
					return
				}
			}
		}
	}()

	return out, nil
}
