// Package logging installs the process-wide slog handler.
//
// Text output is colored with tint for terminals; JSON output is meant for
// log collectors.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: slog.LevelDebug})
//	logging.Setup(logging.Options{Format: "json"})
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler installed by Setup.
type Options struct {
	Level slog.Level
	// Format is "text" (default) or "json".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger from opts without installing it.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: true,
		}))
	}
	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// Setup installs the logger described by opts as the slog default and returns it.
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}
