// Package stream measures sustainable memory bandwidth with the four STREAM
// kernels, running one goroutine per requested thread.
package stream

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/variant"
	"golang.org/x/sync/errgroup"
)

// Name is the benchmark's registered name.
const Name = "stream"

// Factor names.
const (
	FactorArraySize  = "array_size"
	FactorThreads    = "threads"
	FactorKernel     = "kernel"
	FactorIterations = "iterations"
)

// maxArraySize bounds each of the three arrays to 8 GiB.
const maxArraySize = 1 << 30

const scalar = 3.0

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the benchmark with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBenchmark(New())
}

// Benchmark keeps the three arrays between configurations and reallocates
// them only when array_size changes.
type Benchmark struct {
	*benchmark.Base
	a, b, c []float64
}

// New returns the stream benchmark with its defaults.
func New() *Benchmark {
	s := &Benchmark{}
	s.Base = benchmark.NewBase(Name, s)
	for _, f := range []factor.Factor{
		factor.Must(factor.Of(FactorArraySize, uint64(1<<20))),
		factor.Must(factor.Of(FactorThreads, uint32(1))),
		factor.Must(factor.Of(FactorKernel, "triad")),
		factor.Must(factor.Of(FactorIterations, uint32(10))),
	} {
		if err := s.SetDefault(f); err != nil {
			panic(err)
		}
	}
	return s
}

type params struct {
	size       int
	threads    int
	kernel     kernel
	iterations int
}

func readParams(cfg configuration.Configuration) (params, error) {
	size, err := configuration.Lookup[uint64](cfg, FactorArraySize)
	if err != nil {
		return params{}, err
	}
	if size == 0 || size > maxArraySize {
		return params{}, fmt.Errorf("%s must be in [1, %d], got %d", FactorArraySize, maxArraySize, size)
	}
	threads, err := configuration.Lookup[uint32](cfg, FactorThreads)
	if err != nil {
		return params{}, err
	}
	if threads == 0 {
		return params{}, fmt.Errorf("%s must be at least 1", FactorThreads)
	}
	name, err := configuration.Lookup[string](cfg, FactorKernel)
	if err != nil {
		return params{}, err
	}
	k, ok := kernels[name]
	if !ok {
		return params{}, fmt.Errorf("unknown %s %q", FactorKernel, name)
	}
	iterations, err := configuration.Lookup[uint32](cfg, FactorIterations)
	if err != nil {
		return params{}, err
	}
	if iterations == 0 {
		return params{}, fmt.Errorf("%s must be at least 1", FactorIterations)
	}
	return params{
		size:       int(size),
		threads:    int(min(uint64(threads), size)),
		kernel:     k,
		iterations: int(iterations),
	}, nil
}

// OnRun runs the selected kernel over the arrays.
func (s *Benchmark) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	p, err := readParams(cfg)
	if err != nil {
		return nil, err
	}
	if slices.Contains(changed, FactorArraySize) || len(s.a) != p.size {
		ctxlog.FromContext(ctx).Debug("Allocating stream arrays.", "elements", p.size)
		s.allocate(p.size)
	}

	chunk := (p.size + p.threads - 1) / p.threads
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < p.threads; t++ {
		lo, hi := min(t*chunk, p.size), min((t+1)*chunk, p.size)
		g.Go(func() error {
			for i := 0; i < p.iterations; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p.kernel.run(s.a, s.b, s.c, lo, hi)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	bytes := uint64(p.size) * uint64(p.kernel.bytesPerElement) * uint64(p.iterations)
	seconds := max(elapsed.Seconds(), 1e-9)
	return benchmark.NewResult().
		Add("bandwidth_mb_s", variant.Of(float64(bytes)/1e6/seconds)).
		Add("elapsed_ms", variant.Of(float64(elapsed.Microseconds())/1000)).
		Add("bytes", variant.Of(bytes)), nil
}

func (s *Benchmark) allocate(n int) {
	s.a = make([]float64, n)
	s.b = make([]float64, n)
	s.c = make([]float64, n)
	for i := range n {
		s.a[i] = 1
		s.b[i] = 2
	}
}
