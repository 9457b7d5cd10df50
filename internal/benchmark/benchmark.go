// Package benchmark implements the dispatch loop every back-end shares.
//
// A caller hands Run a configuration.Set. Base checks that every required
// factor was supplied, fills the remaining factors from the back-end's
// defaults and enumerates the expansion. For each configuration it computes
// the names whose value changed since the previous one and calls the
// back-end's OnRun. A failing configuration is logged and skipped; it never
// aborts the sweep.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidArgument is returned for setup errors that abort a run before
	// any configuration executes.
	ErrInvalidArgument = errors.New("invalid benchmark argument")

	// ErrMissingFactor is returned when a required factor was not supplied.
	ErrMissingFactor = fmt.Errorf("%w: missing required factor", ErrInvalidArgument)

	// ErrPanic wraps a panic recovered from a back-end.
	ErrPanic = errors.New("benchmark panicked")
)

// ResultFunc receives every configuration that produced a result. Returning
// false stops the sweep.
type ResultFunc func(cfg configuration.Configuration, res *Result) bool

// Runner is implemented by back-ends. changed lists the factor names whose
// value differs from the previous successful call; on the first call, and
// after a failed one, it holds every name.
type Runner interface {
	OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*Result, error)
}

// Benchmark is a named workload that can sweep a configuration.Set.
type Benchmark interface {
	Name() string
	RequiredFactors() []string
	Defaults() *configuration.Set
	Run(ctx context.Context, set *configuration.Set, fn ResultFunc) (int, error)
	RunConfiguration(ctx context.Context, cfg configuration.Configuration, changed []string) (*Result, error)
}

// Option configures a Base.
type Option func(*Base)

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(b *Base) { b.tracer = t }
}

// Base implements Benchmark on top of a Runner.
type Base struct {
	name     string
	runner   Runner
	defaults *configuration.Set
	tracer   trace.Tracer
}

var _ Benchmark = (*Base)(nil)

// NewBase returns a Base named name that executes configurations with r.
func NewBase(name string, r Runner, opts ...Option) *Base {
	b := &Base{
		name:     name,
		runner:   r,
		defaults: &configuration.Set{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer(telemetry.TracerName)
	}
	return b
}

// Require declares factors the caller must supply.
func (b *Base) Require(names ...string) error {
	for _, name := range names {
		if err := b.defaults.AddRequired(name); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
	}
	return nil
}

// SetDefault declares a factor used when the caller does not supply one of
// the same name.
func (b *Base) SetDefault(f factor.Factor) error {
	if err := b.defaults.AddFactor(f); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return nil
}

// Name returns the benchmark's registered name.
func (b *Base) Name() string { return b.name }

// RequiredFactors returns the names declared with Require, in order.
func (b *Base) RequiredFactors() []string {
	var names []string
	for _, f := range b.defaults.Factors() {
		if f.IsRequired() {
			names = append(names, f.Name())
		}
	}
	return names
}

// Defaults returns a copy of the default factors, required placeholders
// included.
func (b *Base) Defaults() *configuration.Set {
	return b.defaults.Clone()
}

func (b *Base) validate(set *configuration.Set) error {
	var missing []string
	for _, name := range b.RequiredFactors() {
		if f, ok := set.Factor(name); !ok || f.Len() == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %v", b.name, ErrMissingFactor, missing)
	}
	return nil
}

// Run sweeps set merged with the defaults and returns the number of
// configurations whose result was accepted by fn. A nil fn accepts every
// result.
//
// Setup errors are returned before any configuration executes. Errors from
// a single configuration are logged and skipped. Cancelling ctx stops the
// sweep after the current configuration and returns ctx.Err().
func (b *Base) Run(ctx context.Context, set *configuration.Set, fn ResultFunc) (int, error) {
	if set == nil {
		return 0, fmt.Errorf("%s: %w: nil configuration set", b.name, ErrInvalidArgument)
	}
	if err := b.validate(set); err != nil {
		return 0, err
	}

	merged := set.Clone()
	merged.Merge(b.defaults, false)
	total, err := merged.Count()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", b.name, err)
	}

	logger := ctxlog.FromContext(ctx).With("benchmark", b.name)
	metrics := telemetry.FromContext(ctx)
	metrics.SweepStarted(b.name)
	logger.Info("Starting sweep.", "configurations", total, "factors", merged.Names())

	var (
		prev     *configuration.Configuration
		accepted int
		failed   int
		ctxErr   error
	)
	_, err = merged.ForEach(func(cfg configuration.Configuration) bool {
		if ctxErr = ctx.Err(); ctxErr != nil {
			return false
		}
		res, err := b.RunConfiguration(ctx, cfg, configuration.ChangeSet(prev, cfg))
		if err != nil {
			failed++
			logger.Error("Configuration failed, skipping.", "configuration", cfg.String(), "error", err)
			// Resources may be half rebuilt; treat everything as changed next time.
			prev = nil
			return true
		}
		prev = &cfg
		if fn != nil && !fn(cfg, res) {
			logger.Debug("Sweep stopped by result callback.", "configuration", cfg.String())
			return false
		}
		accepted++
		return true
	})
	if err != nil {
		return accepted, fmt.Errorf("%s: %w", b.name, err)
	}
	logger.Info("Sweep finished.", "accepted", accepted, "failed", failed)
	if ctxErr != nil {
		return accepted, ctxErr
	}
	return accepted, nil
}

// RunConfiguration executes a single configuration. Panics in the runner are
// recovered and returned as errors wrapping ErrPanic.
func (b *Base) RunConfiguration(ctx context.Context, cfg configuration.Configuration, changed []string) (res *Result, err error) {
	ctx, span := b.tracer.Start(ctx, "configuration", trace.WithAttributes(
		attribute.String("benchmark", b.name),
		attribute.String("configuration", cfg.String()),
		attribute.StringSlice("changed", changed),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
		outcome := telemetry.OutcomeOK
		if err != nil {
			outcome = telemetry.OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		telemetry.FromContext(ctx).ObserveConfiguration(b.name, outcome, time.Since(start))
		span.End()
	}()

	if b.runner == nil {
		return nil, fmt.Errorf("%s: %w: no runner", b.name, ErrInvalidArgument)
	}
	res, err = b.runner.OnRun(ctx, cfg, slices.Clone(changed))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = NewResult()
	}
	return res, nil
}
