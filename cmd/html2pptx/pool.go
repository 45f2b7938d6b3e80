package main

import (
	"context"

	html2pptx "github.com/alnah/go-html2pptx"
)

// runBatch creates a pool of workers converters, runs the batch and closes
// the pool.
func runBatch(ctx context.Context, workers int, inputs []html2pptx.Input, opts ...html2pptx.Option) ([]html2pptx.Result, error) {
	pool, err := html2pptx.NewConverterPool(workers, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pool.Close() }()

	return html2pptx.Batch(ctx, pool, inputs)
}

// resolvePoolSize picks the worker count: flag, then environment, then
// config, then the CPU-based default. The result never exceeds
// MaxPoolSize.
func resolvePoolSize(flagWorkers, envWorkers, cfgWorkers int) int {
	for _, n := range []int{flagWorkers, envWorkers, cfgWorkers} {
		if n > 0 {
			return min(html2pptx.ResolvePoolSize(n), html2pptx.MaxPoolSize)
		}
	}
	return html2pptx.ResolvePoolSize(0)
}
