package native

import (
	"context"
	"fmt"
	"sync"
)

// EvalFunc computes the error of candidate index i.
type EvalFunc func(ctx context.Context, i int) (float64, error)

// scored carries one evaluation back to the collector.
type scored struct {
	index int
	value float64
	err   error
}

// Schedule evaluates candidates 0..total-1 with at most limit evaluations in
// flight. A fixed set of workers pulls indices from a feeder, so a new
// evaluation starts as soon as one completes. Results are collected by a
// single consumer and returned in candidate order regardless of completion
// order.
//
// The first evaluation error cancels the remaining work and is returned.
// progress, when set, is called from the collecting goroutine after every
// successful evaluation.
func Schedule(ctx context.Context, total, limit int, eval EvalFunc, progress func(done, total int)) ([]float64, error) {
	if total <= 0 {
		return []float64{}, nil
	}
	if limit < 1 {
		limit = 1
	}
	workers := min(limit, total)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan scored, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := eval(ctx, i)
				results <- scored{index: i, value: v, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	curve := make([]float64, total)
	seen := make([]bool, total)
	done := 0
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		if seen[r.index] {
			if firstErr == nil {
				firstErr = fmt.Errorf("candidate %d evaluated twice", r.index)
				cancel()
			}
			continue
		}
		seen[r.index] = true
		curve[r.index] = r.value
		done++
		if progress != nil && firstErr == nil {
			progress(done, total)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done != total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("only %d of %d candidates evaluated", done, total)
	}
	return curve, nil
}
