package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/trendfinder-api/internal/api/shared"
	"github.com/phrazzld/trendfinder-api/internal/platform/emf"
	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
	"github.com/phrazzld/trendfinder-api/internal/redact"
)

// MetricsMiddleware owns the metrics record lifecycle: it opens one record
// per request, makes it reachable through the context, and flushes it on
// every exit path, including panics. It is also the outermost panic boundary,
// converting unhandled failures into the structured 500 shape.
type MetricsMiddleware struct {
	emitter *emf.Emitter
	logger  *slog.Logger
}

// NewMetricsMiddleware creates a new MetricsMiddleware. The emitter may be
// nil or disabled; requests then run without a record.
func NewMetricsMiddleware(emitter *emf.Emitter, log *slog.Logger) *MetricsMiddleware {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MetricsMiddleware")
	}
	return &MetricsMiddleware{emitter: emitter, logger: log}
}

// Measure wraps next with the record lifecycle. The record starts with the
// request counter and identifying properties; the handler and store add
// stage metrics as the pipeline runs. The deferred flush runs whatever path
// the request took, and the once-guard in Flush keeps a panic after a
// handler-side flush from double-emitting.
func (m *MetricsMiddleware) Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := m.emitter.NewRecord(r.URL.Path)
		rec.PutMetric(emf.MetricRequests, 1, emf.UnitCount)
		rec.SetProperty("correlation_id", shared.CorrelationID(r.Context()))
		rec.SetProperty("path", r.URL.Path)
		rec.SetProperty("raw_query", r.URL.RawQuery)

		ctx := emf.NewContext(r.Context(), rec)
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		defer func() {
			if rv := recover(); rv != nil {
				rec.SetOutcome(emf.OutcomeError)
				rec.PutMetric(emf.MetricErrors, 1, emf.UnitCount)

				log := logger.FromContextOrDefault(r.Context(), m.logger)
				log.Error("panic while serving request",
					slog.Any("panic", rv),
					slog.String("stack", redact.String(string(debug.Stack()))))

				// A panic after the handler started writing cannot be turned
				// into a clean response anymore.
				if ww.Status() == 0 && ww.BytesWritten() == 0 {
					shared.RespondWithJSON(ww, r, http.StatusInternalServerError, shared.ErrorResponse{
						Error:         shared.ErrCodeInternalError,
						Message:       shared.MsgInternalError,
						CorrelationID: shared.CorrelationID(r.Context()),
					})
				}
			}
			rec.PutDuration(emf.MetricHandlerDuration, time.Since(start))
			rec.Flush()
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
