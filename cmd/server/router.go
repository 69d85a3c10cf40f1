package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/trendfinder-api/internal/api"
	apiMiddleware "github.com/phrazzld/trendfinder-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware. CORS sits outermost so the policy headers
	// ride on every response, and the chi recoverer backstops panics outside
	// the measured API routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewCORSMiddleware().Handle)

	correlation := apiMiddleware.NewCorrelationMiddleware(app.logger)
	metrics := apiMiddleware.NewMetricsMiddleware(app.metrics, app.logger)

	// Create API handlers using the application's services
	trendsHandler := api.NewTrendsHandler(app.eventStore, app.config.Query, app.debugGate, app.logger)
	contractHandler := api.NewContractHandler(app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Correlation resolves before metrics so the flushed record carries
		// the id every log line and response echoes.
		r.Use(correlation.Correlate)
		r.Use(metrics.Measure)

		r.Get("/trends", trendsHandler.Search)
	})

	// The contract is served unmeasured; it is static and changes only with
	// a deploy.
	r.Get("/openapi.yaml", contractHandler.GetContract)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
