// Package executor runs a per-record computation across many records with a
// fixed pool of workers and bounded in-flight work.
//
// At most Workers records are evaluated concurrently and at most 2*Workers are
// in flight (submitted but not completed); the submission loop blocks rather
// than queueing the whole input up front. One record's failure is isolated to
// that record unless the completion callback escalates it.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is half the logical CPU count, minimum 1.
func DefaultWorkers() int {
	w := runtime.NumCPU() / 2
	if w < 1 {
		w = 1
	}
	return w
}

// Config tunes a ForEach run.
type Config struct {
	// Workers is the pool size. Zero or negative selects DefaultWorkers().
	Workers int

	// OnSubmit, when set, observes each item index as it is handed to the
	// pool. Used by tests to verify the in-flight bound.
	OnSubmit func(index int)
}

// ForEach evaluates fn over items with bounded concurrency. Results are
// delivered to onDone as they complete, not in input order; the index
// re-associates each result with its item. onDone is serialized, so callers
// need no locking of their own. Returning a non-nil error from onDone
// escalates: submission stops, in-flight work is cancelled, and that error is
// returned. A cancelled ctx drops pending work and returns ctx's error;
// results already delivered to onDone stay delivered.
func ForEach[T, R any](ctx context.Context, cfg Config, items []T, fn func(ctx context.Context, item T) (R, error), onDone func(index int, result R, err error) error) error {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		item  T
	}

	// The semaphore bounds submitted-but-not-completed work; a slot is held
	// from submission until onDone returns.
	inFlight := semaphore.NewWeighted(int64(2 * workers))
	jobs := make(chan job)

	var (
		doneMu   sync.Mutex
		escalate error
	)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result, err := invoke(runCtx, fn, j.item)

				doneMu.Lock()
				if escalate == nil {
					if cbErr := onDone(j.index, result, err); cbErr != nil {
						escalate = cbErr
						cancel()
					}
				}
				doneMu.Unlock()

				inFlight.Release(1)
			}
		}()
	}

	var submitErr error
	for i, item := range items {
		if err := inFlight.Acquire(runCtx, 1); err != nil {
			submitErr = err
			break
		}
		if cfg.OnSubmit != nil {
			cfg.OnSubmit(i)
		}
		select {
		case jobs <- job{index: i, item: item}:
		case <-runCtx.Done():
			inFlight.Release(1)
			submitErr = runCtx.Err()
		}
		if submitErr != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	doneMu.Lock()
	defer doneMu.Unlock()
	if escalate != nil {
		return escalate
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if submitErr != nil {
		return submitErr
	}
	return nil
}

// invoke shields the pool from a panicking evaluator: the panic becomes that
// item's error instead of tearing down sibling workers.
func invoke[T, R any](ctx context.Context, fn func(context.Context, T) (R, error), item T) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor: worker panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
