package rfdecode

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchItem is the outcome for one input of AnalyzeBatch.
type BatchItem struct {
	Input  string
	Result Result
	Err    error
}

// AnalyzeBatch decodes independent inputs on a pool of workers. Items come
// back in input order. Inputs not started before ctx is done carry ctx.Err().
func AnalyzeBatch(ctx context.Context, inputs []string, opts AnalyzeOptions, workers int) ([]BatchItem, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", workers)
	}
	ctx, reg, err := opts.toInternal(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	items := make([]BatchItem, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		i, in := i, in
		items[i].Input = in
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return
			}
			items[i].Result, items[i].Err = analyze(ctx, reg, in, opts)
		})
		if err != nil {
			wg.Done()
			items[i].Err = fmt.Errorf("submit: %w", err)
		}
	}
	wg.Wait()
	return items, nil
}
