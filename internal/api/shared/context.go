package shared

import "context"

// Header names shared by handlers and middleware.
const (
	// HeaderCorrelationID carries the caller-chosen correlation id. Every
	// response echoes it, generated when the caller sent none.
	HeaderCorrelationID = "X-Correlation-Id"

	// HeaderDebugKey carries the shared debug key.
	HeaderDebugKey = "X-Debug-Key"
)

// ContextKey is the key type for values this package stores in a context.
type ContextKey string

// CorrelationIDKey is the context key for the resolved correlation id.
const CorrelationIDKey ContextKey = "correlationID"

// WithCorrelationID returns a copy of ctx carrying the resolved correlation
// id for the request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationID retrieves the correlation id from the context.
// If none was resolved, it returns an empty string.
func CorrelationID(ctx context.Context) string {
	id, ok := ctx.Value(CorrelationIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
