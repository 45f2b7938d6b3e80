package html2pptx

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing to limit memory (~200MB per browser).
	MaxPoolSize = 8
)

// ConverterPool manages a pool of Converter instances for parallel processing.
// Each converter has its own browser instance, enabling true parallelism.
// Converters are created lazily on first acquire to avoid startup delay.
type ConverterPool struct {
	size       int
	opts       []Option
	converters []*Converter
	sem        chan *Converter
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewConverterPool creates a pool with capacity for n Converter instances,
// all built with opts. Options are validated here, so Acquire cannot fail
// on them later.
func NewConverterPool(n int, opts ...Option) (*ConverterPool, error) {
	if n < 1 {
		n = 1
	}

	// A converter does not start its browser until used; building one is
	// only a validation pass.
	check, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	_ = check.Close()

	return &ConverterPool{
		size:       n,
		opts:       opts,
		converters: make([]*Converter, 0, n),
		sem:        make(chan *Converter, n),
	}, nil
}

// newLocked creates one converter. Callers hold p.mu and have checked
// p.created < p.size.
func (p *ConverterPool) newLocked() *Converter {
	conv, _ := NewConverter(p.opts...) // validated in NewConverterPool
	p.created++
	p.converters = append(p.converters, conv)
	return conv
}

// Acquire gets a converter from the pool, creating one if needed.
// Blocks if all converters are in use. Returns nil once the pool is closed.
func (p *ConverterPool) Acquire() *Converter {
	// Try to get an existing converter (non-blocking)
	select {
	case conv, ok := <-p.sem:
		if !ok {
			return nil
		}
		return conv
	default:
	}

	// Check if we can create a new converter
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.created < p.size {
		conv := p.newLocked()
		p.mu.Unlock()
		return conv
	}
	p.mu.Unlock()

	// All converters created, wait for one to be released
	return <-p.sem
}

// Release returns a converter to the pool. Releasing after Close is a no-op.
// The send happens under the lock so it cannot race with Close closing sem;
// sem has room for every converter, so it only fails on a double release,
// which is ignored.
func (p *ConverterPool) Release(conv *Converter) {
	if conv == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- conv:
	default:
	}
}

// Warmup creates every converter and launches their browsers concurrently,
// so the first files do not pay the startup cost one after another.
// It fails with ErrBrowserConnect only when no browser could start; workers
// that failed retry lazily on their first file.
func (p *ConverterPool) Warmup(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	// sem has room for every converter not yet created, so these sends
	// never block while holding the lock.
	for p.created < p.size {
		p.sem <- p.newLocked()
	}
	all := append([]*Converter(nil), p.converters...)
	p.mu.Unlock()

	var (
		failed   atomic.Int32
		firstErr error
		once     sync.Once
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, conv := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := conv.Start(); err != nil {
				failed.Add(1)
				once.Do(func() { firstErr = err })
				conv.log.Warn("pool: browser failed to start", "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if int(failed.Load()) == len(all) {
		if errors.Is(firstErr, ErrBrowserConnect) {
			return firstErr
		}
		return fmt.Errorf("%w: %v", ErrBrowserConnect, firstErr)
	}
	return nil
}

// Close releases all browser resources.
// Returns an aggregated error if multiple converters fail to close.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, conv := range converters {
		if err := conv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs for
// containers), capped at MaxPoolSize.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0)
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
