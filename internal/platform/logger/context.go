package logger

import (
	"context"
	"log/slog"
)

// contextKey is an unexported type for context keys to avoid collisions with
// keys defined in other packages.
type contextKey struct{}

// loggerKey is the context key under which a request-scoped logger travels.
var loggerKey = contextKey{}

// WithLogger returns a copy of ctx carrying the given logger. Middleware uses
// this to attach a correlation-id-scoped logger to each request. A nil logger
// leaves the context unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger carried by ctx, or nil when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	log, _ := ctx.Value(loggerKey).(*slog.Logger)
	return log
}

// FromContextOrDefault returns the logger carried by ctx, falling back to
// def when the context has none. Handlers use this so they work both behind
// the middleware stack and in isolation (tests).
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if log := FromContext(ctx); log != nil {
		return log
	}
	return def
}
