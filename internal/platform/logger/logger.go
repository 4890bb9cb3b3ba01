// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger writing to stdout.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Discard returns a logger for tests that swallows all output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
