package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Batch defaults.
const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = time.Second
)

// BatchOptions bounds the batch helper: at most Size concurrent calls per
// group and a fixed Delay between groups.
type BatchOptions struct {
	Size  int
	Delay time.Duration
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Size <= 0 {
		o.Size = DefaultBatchSize
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

// BatchResult is the outcome of one batch item, reported at the item's input index.
type BatchResult[T any] struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

var pause = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunBatch calls create for every item in groups of opts.Size. A group's
// calls run concurrently and all of them complete before the next group
// starts; a failing item never stops its siblings. The result slice always
// has one entry per item, in input order. If ctx ends between groups the
// remaining items are reported as failed with the context error.
func RunBatch[In, Out any](ctx context.Context, items []In, opts BatchOptions, create func(ctx context.Context, item In) (Out, error)) []BatchResult[Out] {
	opts = opts.withDefaults()
	results := make([]BatchResult[Out], len(items))

	for start := 0; start < len(items); start += opts.Size {
		end := start + opts.Size
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out, err := create(ctx, items[i])
				res := BatchResult[Out]{Index: i, Success: err == nil}
				if err != nil {
					res.Error = err.Error()
				} else {
					res.Data = out
				}
				results[i] = res
				return nil
			})
		}
		_ = g.Wait()

		if end == len(items) {
			break
		}
		if err := pause(ctx, opts.Delay); err != nil {
			for i := end; i < len(items); i++ {
				results[i] = BatchResult[Out]{Index: i, Error: err.Error()}
			}
			break
		}
	}
	return results
}
