package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/gridbench/internal/benchmark"
)

// ErrUnknownBenchmark is returned when a script names an unregistered benchmark.
var ErrUnknownBenchmark = errors.New("unknown benchmark")

// Module is the interface that all back-end modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the benchmarks registered for a single application instance.
type Registry struct {
	benchmarks map[string]benchmark.Benchmark
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{benchmarks: make(map[string]benchmark.Benchmark)}
}

// RegisterBenchmark makes b available under b.Name(). Registering the same
// name twice is a programming error and panics.
func (r *Registry) RegisterBenchmark(b benchmark.Benchmark) {
	name := b.Name()
	if _, exists := r.benchmarks[name]; exists {
		panic(fmt.Sprintf("benchmark with name '%s' already registered", name))
	}
	slog.Debug("Registering benchmark.", "name", name, "required", b.RequiredFactors())
	r.benchmarks[name] = b
}

// Benchmark returns the benchmark registered under name.
func (r *Registry) Benchmark(name string) (benchmark.Benchmark, error) {
	b, ok := r.benchmarks[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownBenchmark, name, r.Names())
	}
	return b, nil
}

// Names returns the registered benchmark names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.benchmarks))
	for name := range r.benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
