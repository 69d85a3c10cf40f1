package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/domain"
	"github.com/phrazzld/trendfinder-api/internal/platform/emf"
	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
	"github.com/phrazzld/trendfinder-api/internal/query"
	"github.com/phrazzld/trendfinder-api/internal/store"
)

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db         store.DBTX
	table      string
	dateColumn string
	logger     *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface. The table and date column come from configuration,
// which is validated at startup to contain plain SQL identifiers; they are
// the only strings interpolated into query text.
// If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, cfg config.QueryConfig, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:         db,
		table:      cfg.Table,
		dateColumn: cfg.DateColumn,
		logger:     logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// selectColumns lists, in scan order, the columns the page query returns.
// The date column is aliased so the scan target stays stable whatever name
// the deployment configured.
func (s *PostgresEventStore) selectColumns() string {
	return fmt.Sprintf(
		"event_id, %s AS event_date, country, admin1, event_type, sub_event_type, actor1, actor2, fatalities, latitude, longitude",
		s.dateColumn,
	)
}

// Search implements store.EventStore.Search
// It runs the count query first, then fetches the requested window with the
// compiled filters and ordering. Timings for both queries are reported to the
// request's metrics record when the context carries one.
func (s *PostgresEventStore) Search(
	ctx context.Context,
	compiled query.CompiledQuery,
	limit, offset int,
) (*store.EventPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	rec := emf.FromContext(ctx)

	total, err := s.countEvents(ctx, log, rec, compiled)
	if err != nil {
		return nil, err
	}

	events, err := s.selectEvents(ctx, log, rec, compiled, limit, offset)
	if err != nil {
		return nil, err
	}

	log.Debug("sql executed",
		slog.Int64("total", total),
		slog.Int("returned", len(events)))
	return &store.EventPage{Total: total, Events: events}, nil
}

func (s *PostgresEventStore) countEvents(
	ctx context.Context,
	log *slog.Logger,
	rec *emf.Record,
	compiled query.CompiledQuery,
) (int64, error) {
	countSQL := fmt.Sprintf("SELECT COUNT(1) FROM %s %s", s.table, compiled.Where)

	start := time.Now()
	defer func() { rec.PutDuration(emf.MetricSQLCountTime, time.Since(start)) }()

	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, compiled.Args...).Scan(&total); err != nil {
		log.Error("failed to count matching events",
			slog.String("error", err.Error()))
		return 0, mapError("count", err)
	}
	return total, nil
}

func (s *PostgresEventStore) selectEvents(
	ctx context.Context,
	log *slog.Logger,
	rec *emf.Record,
	compiled query.CompiledQuery,
	limit, offset int,
) ([]domain.Event, error) {
	// The window binds after the filter parameters, so the compiled args are
	// copied rather than appended to in place.
	args := make([]any, len(compiled.Args), len(compiled.Args)+2)
	copy(args, compiled.Args)
	args = append(args, limit, offset)

	selectSQL := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT $%d OFFSET $%d",
		s.selectColumns(), s.table, compiled.Where, compiled.Order,
		len(args)-1, len(args))

	start := time.Now()
	defer func() { rec.PutDuration(emf.MetricSQLSelectTime, time.Since(start)) }()

	rows, err := s.db.QueryContext(ctx, selectSQL, args...)
	if err != nil {
		log.Error("failed to query events page",
			slog.String("error", err.Error()))
		return nil, mapError("select", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		var (
			ev        domain.Event
			admin1    sql.NullString
			actor2    sql.NullString
			latitude  sql.NullFloat64
			longitude sql.NullFloat64
		)

		err := rows.Scan(
			&ev.EventID,
			&ev.EventDate,
			&ev.Country,
			&admin1,
			&ev.EventType,
			&ev.SubEventType,
			&ev.Actor1,
			&actor2,
			&ev.Fatalities,
			&latitude,
			&longitude,
		)
		if err != nil {
			log.Error("failed to scan event row",
				slog.String("error", err.Error()))
			return nil, mapError("scan", err)
		}

		ev.Admin1 = admin1.String
		ev.Actor2 = actor2.String
		if latitude.Valid {
			v := latitude.Float64
			ev.Latitude = &v
		}
		if longitude.Valid {
			v := longitude.Float64
			ev.Longitude = &v
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning event rows",
			slog.String("error", err.Error()))
		return nil, mapError("iterate", err)
	}

	return events, nil
}
