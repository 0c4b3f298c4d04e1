package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run calls fn for every item with at most workers calls in flight. With
// workers <= 1 items are processed strictly in order. The first error stops
// scheduling further items and is returned once in-flight calls finish;
// so does cancellation of ctx.
func Run[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) error {
	if workers <= 1 {
		for _, it := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, it); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, it)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
