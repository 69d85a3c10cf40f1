package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/trendfinder-api/internal/api"
	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/platform/emf"
	"github.com/phrazzld/trendfinder-api/internal/platform/postgres"
	"github.com/phrazzld/trendfinder-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Store (interface so tests can substitute a fake)
	eventStore store.EventStore

	// Request pipeline pieces shared across handlers
	debugGate *api.DebugGate
	metrics   *emf.Emitter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Metrics emitter writes embedded-metric lines to stdout alongside the
	// JSON logs; NewRecord is a no-op when metrics are disabled.
	app.metrics = emf.NewEmitter(cfg.Metrics, nil, logger)

	app.eventStore = postgres.NewPostgresEventStore(db, cfg.Query, logger)
	app.debugGate = api.NewDebugGate(cfg.Debug)

	logger.Info("Application initialized successfully",
		"table", cfg.Query.Table,
		"metrics_enabled", cfg.Metrics.Enabled,
		"debug_keys_configured", len(cfg.Debug.Keys))
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
