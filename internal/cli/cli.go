package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gridbench/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varsFlag collects repeated -var name=value flags.
type varsFlag map[string]string

func (v varsFlag) String() string {
	parts := make([]string, 0, len(v))
	for k, val := range v {
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridbench", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridbench - Sweeps benchmark parameters over a grid and records every result.

Usage:
  gridbench [options] [SCRIPT_PATH...]

Arguments:
  SCRIPT_PATH
    A .hcl, .yaml or .yml script, or a directory containing scripts.

Options:
`)
		flagSet.PrintDefaults()
	}

	scriptFlag := flagSet.String("script", "", "Path to the script file or directory.")
	sFlag := flagSet.String("s", "", "Path to the script file or directory (shorthand).")
	outputFlag := flagSet.String("output", "results.csv", "CSV results file. '-' writes to stdout.")
	oFlag := flagSet.String("o", "", "CSV results file (shorthand).")
	metricsPortFlag := flagSet.Int("metrics-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	traceFlag := flagSet.String("trace", "", "Write one JSON span per configuration to this file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	listFlag := flagSet.Bool("list", false, "List the available benchmarks and their factors, then exit.")
	uploadFlag := flagSet.String("upload-url", "", "Pre-signed URL the results file is PUT to after the run.")
	vars := varsFlag{}
	flagSet.Var(vars, "var", "Script variable as name=value, available as var.<name>. Repeatable.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	if *scriptFlag != "" {
		paths = append(paths, *scriptFlag)
	} else if *sFlag != "" {
		paths = append(paths, *sFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Script paths determined.", "paths", paths)

	if len(paths) == 0 && !*listFlag {
		slog.Debug("No script path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outputPath := *outputFlag
	if *oFlag != "" {
		outputPath = *oFlag
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScriptPaths: paths,
		OutputPath:  outputPath,
		LogFormat:   *logFormatFlag,
		LogLevel:    *logLevelFlag,
		MetricsPort: *metricsPortFlag,
		TracePath:   *traceFlag,
		List:        *listFlag,
		Vars:        vars,
		UploadURL:   *uploadFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
