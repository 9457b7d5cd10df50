package config

import (
	"errors"
	"fmt"

	"github.com/vk/gridbench/internal/configuration"
)

// ErrDuplicateSweep is returned when two sweeps share a benchmark and name.
var ErrDuplicateSweep = errors.New("duplicate sweep")

// Model is the unified, format-agnostic representation of all loaded
// scripts.
type Model struct {
	Sweeps []*Sweep
}

// Sweep is the format-agnostic representation of a `sweep` block.
type Sweep struct {
	Benchmark string
	Name      string
	Factors   *configuration.Set
	// OptimiseOrder lists factors that should vary fastest, typically the
	// ones cheapest to change between configurations.
	OptimiseOrder []string
	// SystemFactors adds a single-valued factor per system fact.
	SystemFactors bool
	// Source is the file the sweep was read from.
	Source string
}

// ID returns "benchmark.name".
func (s *Sweep) ID() string {
	return s.Benchmark + "." + s.Name
}

// Append adds other's sweeps to m, rejecting duplicate IDs.
func (m *Model) Append(other *Model) error {
	if other == nil {
		return nil
	}
	seen := make(map[string]*Sweep, len(m.Sweeps))
	for _, s := range m.Sweeps {
		seen[s.ID()] = s
	}
	for _, s := range other.Sweeps {
		if prev, ok := seen[s.ID()]; ok {
			return fmt.Errorf("%w %q in %s, first declared in %s", ErrDuplicateSweep, s.ID(), s.Source, prev.Source)
		}
		seen[s.ID()] = s
		m.Sweeps = append(m.Sweeps, s)
	}
	return nil
}
