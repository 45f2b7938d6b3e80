package html2pptx

import (
	"context"
	"sync"

	"github.com/alnah/go-html2pptx/internal/fileutil"
)

// Batch converts every input using the pool's workers and returns one
// Result per input, in input order. A file's failure is recorded in its
// Result and never stops the others.
//
// The returned error is batch-fatal: the pool is closed, or no browser could
// start at all. Cancelling ctx stops handing out new files; files not started
// are reported with the context error.
func Batch(ctx context.Context, pool *ConverterPool, inputs []Input) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if err := pool.Warmup(ctx); err != nil {
		return nil, err
	}

	results := make([]Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := min(pool.Size(), len(inputs))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = convertOne(ctx, pool, inputs[i])
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(inputs); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		results[i] = failed(inputs[i], ctx.Err())
	}
	return results, nil
}

func convertOne(ctx context.Context, pool *ConverterPool, in Input) Result {
	conv := pool.Acquire()
	if conv == nil {
		return failed(in, ErrPoolClosed)
	}
	defer pool.Release(conv)

	res, err := conv.Convert(ctx, in)
	if err != nil {
		return failed(in, err)
	}
	return *res
}

func failed(in Input, err error) Result {
	out := in.OutputPath
	if out == "" && in.HTMLPath != "" {
		out = fileutil.OutputPath(in.HTMLPath, "")
	}
	return Result{InputPath: in.HTMLPath, OutputPath: out, Err: err}
}

// Summary counts batch outcomes.
type Summary struct {
	Succeeded int
	Failed    int
	Slides    int
	// FontTimeouts counts successful files converted before their web fonts
	// finished loading.
	FontTimeouts int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Slides += r.Slides
		if r.Fonts == FontsTimedOut {
			s.FontTimeouts++
		}
	}
	return s
}
