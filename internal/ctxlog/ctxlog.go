// Package ctxlog carries a slog.Logger through context.Context so that every
// layer of a build (script loading, graph execution, compiler invocations)
// logs through the same configured handler.
package ctxlog

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug. Build scripts can emit messages at
// this level; nothing inside cbuild itself logs at it.
const LevelTrace = slog.Level(-8)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. A missing logger is a
// wiring bug, so it panics instead of silently falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}

// With returns a context whose logger carries the given attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
