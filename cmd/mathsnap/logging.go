package main

import (
	"io"
	"log/slog"
)

// newLogger returns the stderr logger: warnings by default, debug with
// --verbose, errors only with --quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
