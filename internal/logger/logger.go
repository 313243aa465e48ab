// Package logger builds the application's structured logger from the
// logging settings. A --verbose flag on the CLI forces the debug level
// regardless of the configured one.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// New creates a logger writing to stderr per the given settings.
func New(settings domain.LoggingSettings) *slog.Logger {
	return NewWithWriter(os.Stderr, settings)
}

// NewWithWriter creates a logger writing to w. Used by tests and by
// commands that redirect logs away from their own output.
func NewWithWriter(w io.Writer, settings domain.LoggingSettings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(settings.Level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(settings.Format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level.
// Unknown or empty names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
