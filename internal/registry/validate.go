package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/ctxlog"
)

// Validate checks every sweep of model against the registry: the benchmark
// must exist and every factor it requires must be supplied. Factors the
// benchmark does not know about are allowed, since they still label the
// output rows, but are logged.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, s := range model.Sweeps {
		b, err := r.Benchmark(s.Benchmark)
		if err != nil {
			errs = append(errs, fmt.Errorf("sweep %q in %s: %w", s.ID(), s.Source, err))
			continue
		}
		for _, name := range b.RequiredFactors() {
			if f, ok := s.Factors.Factor(name); !ok || f.Len() == 0 {
				errs = append(errs, fmt.Errorf("sweep %q in %s: %w %q", s.ID(), s.Source, benchmark.ErrMissingFactor, name))
			}
		}
		defaults := b.Defaults()
		for _, name := range s.Factors.Names() {
			if !defaults.Contains(name) {
				logger.Warn("Sweep sets a factor the benchmark does not read.", "sweep", s.ID(), "factor", name)
			}
		}
	}
	return errors.Join(errs...)
}
