package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log formats accepted by Config.LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// parseLogLevel maps a -log-level value onto a slog level. Empty means info.
func parseLogLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	level, ok := logLevels[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", s)
	}
	return level, nil
}

// parseLogFormat normalises a -log-format value. Empty means text.
func parseLogFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case "":
		return LogFormatText, nil
	case LogFormatText, LogFormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", s)
}

// newLogger creates the isolated logger of one App. It does not set the
// global logger, so apps built side by side in tests never share output.
func newLogger(cfg *Config, outW io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := parseLogFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, opts)), nil
	}
	return slog.New(slog.NewTextHandler(outW, opts)), nil
}
