package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// newLogHandler builds a handler for the configured level and format. The
// json format is for machine consumption; anything else gets tinted text.
func newLogHandler(w io.Writer, levelStr, format string) slog.Handler {
	level := parseLogLevel(levelStr)

	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{Level: level})
}

// newLogger creates a logger for CLI commands that writes to stderr
func newLogger(levelStr, format string) *slog.Logger {
	return slog.New(newLogHandler(os.Stderr, levelStr, format))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
