package anychargen

import (
	"context"

	"github.com/marcusdavidalo/anychargen/generator"
)

// collectCapHint bounds the up-front allocation made by Collect.
const collectCapHint = 1 << 16

// Collect runs a single job on a fresh Scheduler configured by opts and returns
// every combination in generation order.
// It owns the lifecycle: New, Start, drain until completion, Close.
//
// Semantics:
// - Validation errors from Start are returned unchanged.
// - If ctx is done before completion, the combinations received so far are returned with ctx.Err().
// - Output size is unbounded unless WithMaxCombinations is among opts.
func Collect(ctx context.Context, alphabet string, length int, opts ...Option) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if _, err = s.Start(alphabet, length); err != nil {
		return nil, err
	}

	capHint := collectCapHint
	if n, ok := generator.Count(len([]rune(alphabet)), length); ok && n < collectCapHint {
		capHint = int(n)
	}
	out := make([]string, 0, capHint)

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case ev, ok := <-s.Events():
			if !ok {
				return out, ErrClosed
			}
			out = append(out, ev.Batch...)
			if ev.Kind == EventComplete {
				return out, nil
			}
		}
	}
}
