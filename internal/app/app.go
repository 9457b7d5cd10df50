package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/sysfactor"
	"github.com/vk/gridbench/modules/env_vars"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	cfg        *Config
	registry   *registry.Registry
	model      *config.Model
	facts      *sysfactor.Registry
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Scripts that fail to load or name unknown benchmarks are fatal and panic.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger, err := newLogger(cfg, outW)
	if err != nil {
		panic(fmt.Errorf("invalid logging configuration: %w", err))
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Create and populate the registry with Go benchmarks.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	model := &config.Model{}
	if !cfg.List {
		if model, err = loader.Load(ctx, cfg.ScriptPaths...); err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		logger.Debug("Scripts loaded and translated into unified model.", "sweeps", len(model.Sweeps))

		// A script naming an unknown benchmark or missing a required factor
		// cannot run at all.
		if err := reg.Validate(ctx, model); err != nil {
			panic(fmt.Errorf("invalid configuration: %w", err))
		}
		logger.Debug("Registry validation passed.")
	}

	facts := sysfactor.Default()
	names, err := env_vars.RegisterFacts(facts, os.Environ(), env_vars.Prefix)
	if err != nil {
		logger.Warn("Some environment facts were skipped.", "error", err)
	}
	logger.Debug("System factors registered.", "from_environment", names)

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		model:    model,
		facts:    facts,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded scripts. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
