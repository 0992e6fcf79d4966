package gate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/tollgate/internal/chain"
)

// DefaultConcurrency bounds ValidateMany when the caller passes zero.
const DefaultConcurrency = 8

// ValidateMany validates inputs concurrently, at most concurrency at a time.
// Results are in input order.
func ValidateMany(ctx context.Context, v Validator, inputs []string, cc chain.Context, opts Options, concurrency int) []Outcome {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make([]Outcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			out[i] = validateSafely(gctx, v, input, cc, opts)
			return nil
		})
	}

	_ = g.Wait() // workers never fail
	return out
}
