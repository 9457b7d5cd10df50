package app

import (
	"errors"
	"fmt"
	"strings"
)

// StdoutPath as OutputPath writes results to the app's output writer.
const StdoutPath = "-"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPaths []string // .hcl, .yaml and .yml files or directories
	OutputPath  string   // CSV results file, or StdoutPath

	LogFormat   string // LogFormatText or LogFormatJSON
	LogLevel    string // debug, info, warn or error
	MetricsPort int    // serves /health and /metrics; 0 is disabled
	TracePath   string // JSON span file; empty is disabled

	// List prints the registered benchmarks instead of running sweeps.
	List bool
	// Vars are exposed to HCL scripts as `var.<name>`.
	Vars map[string]string
	// UploadURL receives the results file with a PUT after the run.
	UploadURL string
}

// NewConfig validates cfg, fills in defaults and normalises the log settings
// to lower case.
func NewConfig(cfg Config) (*Config, error) {
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	format, err := parseLogFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	cfg.LogFormat = format
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.List {
		return &cfg, nil
	}
	if len(cfg.ScriptPaths) == 0 {
		return nil, errors.New("at least one script path is required")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "results.csv"
	}
	if cfg.UploadURL != "" && cfg.OutputPath == StdoutPath {
		return nil, errors.New("upload-url needs a results file, not stdout")
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return nil, fmt.Errorf("metrics port %d is out of range", cfg.MetricsPort)
	}
	return &cfg, nil
}
