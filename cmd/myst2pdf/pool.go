package main

import (
	"context"

	myst2pdf "github.com/jhconning/myst2pdf"
)

// Exporter is the interface for the export engine.
type Exporter interface {
	Export(ctx context.Context, input myst2pdf.Input) (*myst2pdf.ExportResult, error)
	ExportAll(ctx context.Context, doc *myst2pdf.Document, base myst2pdf.Input) ([]myst2pdf.TargetResult, error)
}

// Compile-time interface implementation check.
var _ Exporter = (*myst2pdf.Exporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire() (Exporter, error)
	Release(Exporter)
	Size() int
}

// exporterPool adapts myst2pdf.ExporterPool to the Pool interface.
type exporterPool struct {
	pool *myst2pdf.ExporterPool
}

// Compile-time check that exporterPool implements Pool.
var _ Pool = (*exporterPool)(nil)

// newExporterPool creates a pool of n exporters sharing opts.
func newExporterPool(n int, opts ...myst2pdf.Option) *exporterPool {
	return &exporterPool{pool: myst2pdf.NewExporterPool(n, opts...)}
}

// Acquire gets an exporter from the pool, creating one if needed.
func (p *exporterPool) Acquire() (Exporter, error) {
	return p.pool.Acquire()
}

// Release returns an exporter to the pool.
// Exporters not created by this pool are dropped silently.
func (p *exporterPool) Release(e Exporter) {
	if exp, ok := e.(*myst2pdf.Exporter); ok {
		p.pool.Release(exp)
	}
}

// Size returns the pool capacity.
func (p *exporterPool) Size() int {
	return p.pool.Size()
}

// Close releases all browser resources.
func (p *exporterPool) Close() error {
	return p.pool.Close()
}
