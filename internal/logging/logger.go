// Package logging provides structured logging for go-manim-stress.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls logger construction.
type Options struct {
	// Format is "json" or "text". Anything else falls back to text, which
	// suits a tool whose primary output is a console transcript.
	Format string

	// Level is "debug", "info", "warn" or "error".
	Level string

	// Verbose forces debug level regardless of Level.
	Verbose bool

	// Writer overrides the destination, stderr by default. The console
	// transcript owns stdout, so structured logs stay off it.
	Writer io.Writer
}

// New creates a structured logger from the options.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything, for the TUI mode where
// structured output would corrupt the dashboard.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
