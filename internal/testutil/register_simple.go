package testutil

import (
	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/registry"
)

// SimpleModule is a test helper for registering ready-made benchmarks.
type SimpleModule struct {
	Benchmarks []benchmark.Benchmark
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, b := range m.Benchmarks {
		r.RegisterBenchmark(b)
	}
}
