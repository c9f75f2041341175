// Package logging builds the slog logger used for diagnostic output and
// carries it through context.Context.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// New returns a text logger writing to w. Verbose lowers the level to Debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}

	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context.
// It never returns nil; callers without a logger get Discard().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return Discard()
	}

	logger, ok := ctx.Value(contextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return Discard()
	}

	return logger
}
