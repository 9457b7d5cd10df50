// Package sysfactor collects facts about the machine a sweep runs on, such
// as the CPU, operating system and installed memory, so they can be
// recorded next to every configuration.
//
// Providers live in an explicit Registry built at startup rather than in
// package-level state.
package sysfactor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/vk/gridbench/internal/variant"
)

// Provider returns the current value of one system factor.
type Provider func() (variant.Variant, error)

// Fact is a collected system factor.
type Fact struct {
	Name  string
	Value variant.Variant
}

// Registry maps factor names to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Default returns a Registry with the built-in providers registered.
func Default() *Registry {
	r := New()
	r.mustRegister("cpu", func() (variant.Variant, error) { return variant.Of(cpuModel()), nil })
	r.mustRegister("cpu_count", func() (variant.Variant, error) { return variant.Of(uint32(runtime.NumCPU())), nil })
	r.mustRegister("os", func() (variant.Variant, error) { return variant.Of(runtime.GOOS), nil })
	r.mustRegister("arch", func() (variant.Variant, error) { return variant.Of(runtime.GOARCH), nil })
	r.mustRegister("go_version", func() (variant.Variant, error) { return variant.Of(runtime.Version()), nil })
	r.mustRegister("hostname", func() (variant.Variant, error) {
		h, err := os.Hostname()
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.Of(h), nil
	})
	r.mustRegister("installed_memory", func() (variant.Variant, error) {
		n, err := installedMemory()
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.Of(n), nil
	})
	return r
}

// Register adds a provider. Names must be non-empty and unique.
func (r *Registry) Register(name string, p Provider) error {
	if name == "" || p == nil {
		return errors.New("system factor needs a name and a provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("system factor %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

func (r *Registry) mustRegister(name string, p Provider) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Collect invokes every provider in name order. Failing providers are
// left out of the result and reported through the joined error.
func (r *Registry) Collect(ctx context.Context) ([]Fact, error) {
	var (
		facts []Fact
		errs  []error
	)
	for _, name := range r.Names() {
		if err := ctx.Err(); err != nil {
			return facts, err
		}
		r.mu.RLock()
		p := r.providers[name]
		r.mu.RUnlock()

		v, err := p()
		if err != nil {
			errs = append(errs, fmt.Errorf("system factor %q: %w", name, err))
			continue
		}
		facts = append(facts, Fact{Name: name, Value: v})
	}
	return facts, errors.Join(errs...)
}
