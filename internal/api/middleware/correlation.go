// Package middleware provides the HTTP middleware chain for the API:
// correlation id resolution and the metrics record lifecycle.
package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/phrazzld/trendfinder-api/internal/api/shared"
	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
)

// CorrelationMiddleware resolves the request's correlation id and scopes the
// context logger with it.
type CorrelationMiddleware struct {
	logger *slog.Logger
}

// NewCorrelationMiddleware creates a new CorrelationMiddleware.
func NewCorrelationMiddleware(log *slog.Logger) *CorrelationMiddleware {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CorrelationMiddleware")
	}
	return &CorrelationMiddleware{logger: log}
}

// Correlate resolves the correlation id and attaches it to the request:
// the caller's X-Correlation-Id header wins, then the platform request id,
// then a freshly generated UUID. The resolved id is stored in the context,
// echoed as a response header, and stamped onto the context logger so every
// log line for the request carries it.
func (m *CorrelationMiddleware) Correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get(shared.HeaderCorrelationID)
		if corrID == "" {
			corrID = chimiddleware.GetReqID(r.Context())
		}
		if corrID == "" {
			corrID = uuid.NewString()
		}

		log := m.logger.With(slog.String("correlation_id", corrID))
		ctx := shared.WithCorrelationID(r.Context(), corrID)
		ctx = logger.WithLogger(ctx, log)

		w.Header().Set(shared.HeaderCorrelationID, corrID)

		log.Info("request received",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("raw_query", r.URL.RawQuery))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
