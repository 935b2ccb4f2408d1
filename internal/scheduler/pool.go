// Package scheduler runs work items through a bounded pool of
// goroutines. The pool is a sliding window: each worker pulls the next
// item the moment it finishes, so slow items never stall the rest of
// the batch.
package scheduler

import (
	"context"
	"sync"

	"github.com/pratama/articleforge/internal/domain"
)

const (
	MinWorkers = 1
	MaxWorkers = 100
)

// Clamp bounds a worker count to the supported range.
func Clamp(workers int) int {
	if workers < MinWorkers {
		return MinWorkers
	}
	if workers > MaxWorkers {
		return MaxWorkers
	}
	return workers
}

// Run feeds items to `workers` goroutines and blocks until all items
// are handled. workers==1 degrades to strict sequential processing.
// Started items always run to completion. Once ctx is canceled the
// remaining items are skipped, not started; they stay in whatever
// state the caller tracks them in.
func Run(ctx context.Context, items []domain.JobItem, workers int, fn func(ctx context.Context, item domain.JobItem)) {
	workers = Clamp(workers)
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	itemChan := make(chan domain.JobItem, len(items))
	for _, item := range items {
		itemChan <- item
	}
	close(itemChan)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemChan {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, item)
			}
		}()
	}
	wg.Wait()
}
