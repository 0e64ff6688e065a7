// Package worker provides the bounded fan-out used to run independent
// units of work concurrently without losing their input order.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs one item's output with the error that produced it, at the
// position of its input.
type Result[T any] struct {
	Value T
	Err   error
}

// Map runs fn over every item with at most limit in flight at once.
// Results come back index-aligned with items; a failed item carries its
// error and never disturbs its neighbors. Once ctx is canceled the
// remaining items fail with ctx.Err().
func Map[I, O any](ctx context.Context, limit int, items []I, fn func(context.Context, I) (O, error)) []Result[O] {
	if limit < 1 {
		limit = 1
	}
	results := make([]Result[O], len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
