package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Map executes fn for every item on a fixed number of workers
//
// Behavior:
//   - At most workers calls run at once; remaining items wait for a free slot
//   - Every item is processed, a failing call does not cancel its siblings
//   - Results keep the order of items
//   - Returns the first error that occurred once all calls have finished
//   - Panics are recovered, logged with their stack and returned as errors
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]R, len(items))

	var eg errgroup.Group
	eg.SetLimit(workers)

	for i, item := range items {
		eg.Go(func() error {
			r, err := call(ctx, item, fn)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is Map for calls without a result
func Each[T any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}

func call[T, R any](ctx context.Context, item T, fn func(ctx context.Context, item T) (R, error)) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			ctxlog.From(ctx).Error("panic in worker",
				"recover", rec,
				"stack", string(stack))
			err = goerr.New("panic in worker", goerr.V("recover", rec))
		}
	}()

	return fn(ctx, item)
}
