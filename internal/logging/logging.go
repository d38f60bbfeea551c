// Package logging configures the structured logger shared by the CLI
// and the dashboard server.
package logging

import (
	"io"
	"log/slog"
)

// New creates a structured logger. The dashboard logs JSON; the CLI uses
// text output when verbose.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// HTTPRequest logs one served request with standard attributes
func HTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
}
