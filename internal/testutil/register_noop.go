package testutil

import (
	"context"
	"fmt"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/variant"
)

// RunnerFunc adapts a function to benchmark.Runner.
type RunnerFunc func(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error)

// OnRun implements benchmark.Runner.
func (f RunnerFunc) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	return f(ctx, cfg, changed)
}

// NoOpModule registers a "noop" benchmark that accepts any factors and
// returns an empty result.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterBenchmark(benchmark.NewBase("noop", RunnerFunc(func(context.Context, configuration.Configuration, []string) (*benchmark.Result, error) {
		return nil, nil
	})))
}

// FlakyModule registers a "flaky" benchmark that fails every configuration
// whose factor "n" equals one of FailOn and reports n otherwise.
type FlakyModule struct {
	FailOn []int32
}

// Register implements the registry.Module interface.
func (m *FlakyModule) Register(r *registry.Registry) {
	r.RegisterBenchmark(benchmark.NewBase("flaky", RunnerFunc(func(_ context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
		n, err := configuration.Lookup[int32](cfg, "n")
		if err != nil {
			return nil, err
		}
		for _, f := range m.FailOn {
			if n == f {
				return nil, fmt.Errorf("flaky failure at n=%d", n)
			}
		}
		return benchmark.NewResult().
			Add("n_seen", variant.Of(n)).
			Add("changed", variant.Of(uint32(len(changed)))), nil
	})))
}
