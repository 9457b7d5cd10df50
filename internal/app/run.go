package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/output"
	"github.com/vk/gridbench/internal/telemetry"
	"github.com/vk/gridbench/modules/s3"
	"go.opentelemetry.io/otel"
)

// Run executes every loaded sweep in script order and writes one CSV row
// per accepted configuration. A failing sweep does not stop the others;
// their errors are joined. Cancelling ctx stops after the current
// configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.List {
		return a.list()
	}

	if a.cfg.TracePath != "" {
		shutdown, err := a.startTracing(a.cfg.TracePath)
		if err != nil {
			return err
		}
		defer shutdown(ctx)
	}

	promReg := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(promReg)
	if err != nil {
		return err
	}
	ctx = telemetry.WithMetrics(ctx, metrics)
	a.startServer(promReg)
	defer a.closeServer(ctx)
	defer a.closeBenchmarks()

	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	out, closeOut, err := a.openOutput()
	if err != nil {
		return err
	}
	w := output.NewCSVWriter(out)

	logger.Info("🚀 Starting sweeps...", "sweeps", len(a.model.Sweeps), "output", a.cfg.OutputPath)
	var errs []error
	for _, s := range a.model.Sweeps {
		if err := a.runSweep(ctx, runID, s, w); err != nil {
			errs = append(errs, fmt.Errorf("sweep %q: %w", s.ID(), err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err := closeOut(); err != nil {
		errs = append(errs, fmt.Errorf("closing results: %w", err))
	}
	logger.Info("🏁 Sweeps finished.", "rows", w.Rows(), "failed_sweeps", len(errs))

	if a.cfg.UploadURL != "" && len(errs) == 0 {
		if err := s3.NewUploader(nil).Upload(ctx, a.cfg.OutputPath, a.cfg.UploadURL); err != nil {
			errs = append(errs, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return errors.Join(errs...)
}

func (a *App) runSweep(ctx context.Context, runID string, s *config.Sweep, w *output.CSVWriter) error {
	ctx = ctxlog.With(ctx, "sweep", s.ID())
	logger := ctxlog.FromContext(ctx)

	b, err := a.registry.Benchmark(s.Benchmark)
	if err != nil {
		return err
	}

	set := s.Factors.Clone()
	if s.SystemFactors {
		if err := set.AddSystemFactors(ctx, a.facts); err != nil {
			logger.Warn("Some system factors could not be collected.", "error", err)
		}
	}
	if len(s.OptimiseOrder) > 0 {
		set.OptimiseOrder(s.OptimiseOrder...)
	}

	var writeErr error
	n, err := b.Run(ctx, set, func(cfg configuration.Configuration, res *benchmark.Result) bool {
		writeErr = w.Write(output.Row{
			RunID:     runID,
			Benchmark: s.Benchmark,
			Sweep:     s.Name,
			Config:    cfg,
			Result:    res,
		})
		return writeErr == nil
	})
	logger.Info("Sweep complete.", "results", n)
	return errors.Join(err, writeErr)
}

// openOutput returns the results writer and a func closing it.
func (a *App) openOutput() (io.Writer, func() error, error) {
	if a.cfg.OutputPath == StdoutPath {
		return a.outW, func() error { return nil }, nil
	}
	f, err := os.Create(a.cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating results file: %w", err)
	}
	return f, f.Close, nil
}

// startTracing installs a global provider writing spans to path.
func (a *App) startTracing(path string) (func(context.Context), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	tp, err := telemetry.NewTracerProvider(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error("Trace provider shutdown failed", "error", err)
		}
		f.Close()
	}, nil
}

// closeBenchmarks releases connections held by back-ends between
// configurations.
func (a *App) closeBenchmarks() {
	for _, name := range a.registry.Names() {
		b, err := a.registry.Benchmark(name)
		if err != nil {
			continue
		}
		if c, ok := b.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// list prints every registered benchmark with its factors.
func (a *App) list() error {
	for _, name := range a.registry.Names() {
		b, err := a.registry.Benchmark(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, name)
		for _, f := range b.Defaults().Factors() {
			fmt.Fprintf(a.outW, "  %s\n", f)
		}
	}
	return nil
}
