package myst2pdf

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ExporterPool manages a pool of Exporter instances for parallel batch
// export. Each exporter has its own browser instance, enabling true
// parallelism. Exporters are created lazily on first acquire to avoid
// startup delay.
type ExporterPool struct {
	size      int
	opts      []Option
	exporters []*Exporter
	sem       chan *Exporter
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewExporterPool creates a pool with capacity for n Exporter instances,
// each configured with opts. Exporters are created lazily when acquired,
// not at pool creation.
func NewExporterPool(n int, opts ...Option) *ExporterPool {
	if n < 1 {
		n = 1
	}

	return &ExporterPool{
		size:      n,
		opts:      opts,
		exporters: make([]*Exporter, 0, n),
		sem:       make(chan *Exporter, n),
	}
}

// Acquire gets an exporter from the pool, creating one if needed.
// Blocks if all exporters are in use. Creation errors (bad style or asset
// path) surface here rather than at pool construction. Returns
// ErrPoolClosed once Close has been called.
func (p *ExporterPool) Acquire() (*Exporter, error) {
	// Try to get an existing exporter (non-blocking)
	select {
	case exp, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return exp, nil
	default:
	}

	// Check if we can create a new exporter
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new exporter outside the lock
		exp, err := NewExporter(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.exporters = append(p.exporters, exp)
		p.mu.Unlock()

		return exp, nil
	}
	p.mu.Unlock()

	// All exporters created, wait for one to be released
	exp, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return exp, nil
}

// Release returns an exporter to the pool. Releasing into a closed pool
// is a no-op.
func (p *ExporterPool) Release(exp *Exporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	// The send happens under the lock so Close cannot close the channel
	// in between. It cannot block: cap(sem) == size >= created, and only
	// acquired exporters are released.
	p.sem <- exp
}

// Close releases all browser resources.
// Returns an aggregated error if multiple exporters fail to close.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	// Drain idle exporters so later Acquires see the closed channel
	// instead of handing out an exporter that is about to be closed.
	// Every instance is tracked in p.exporters, so none is lost here.
	for range p.sem {
	}
	exporters := p.exporters
	p.mu.Unlock()

	var errs []error
	for _, exp := range exporters {
		if err := exp.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
