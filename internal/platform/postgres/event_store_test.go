package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-openapi/strfmt"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/domain"
	"github.com/phrazzld/trendfinder-api/internal/platform/emf"
	"github.com/phrazzld/trendfinder-api/internal/query"
	"github.com/phrazzld/trendfinder-api/internal/store"
)

const (
	testCountSQL = `SELECT COUNT(1) FROM events ` +
		`WHERE event_date >= $1 AND event_date < $2 AND country = $3`
	testSelectSQL = `SELECT event_id, event_date AS event_date, country, admin1, event_type, ` +
		`sub_event_type, actor1, actor2, fatalities, latitude, longitude FROM events ` +
		`WHERE event_date >= $1 AND event_date < $2 AND country = $3 ` +
		`ORDER BY event_date DESC, event_id ASC LIMIT $4 OFFSET $5`
)

var eventColumns = []string{
	"event_id", "event_date", "country", "admin1", "event_type",
	"sub_event_type", "actor1", "actor2", "fatalities", "latitude", "longitude",
}

func newTestEventStore(t *testing.T) (*PostgresEventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.QueryConfig{
		Table:           "events",
		DateColumn:      "event_date",
		DefaultPageSize: 50,
		MaxPageSize:     500,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresEventStore(db, cfg, log), mock
}

func testCompiledQuery(t *testing.T) query.CompiledQuery {
	t.Helper()
	q := &domain.SearchQuery{
		Country:   "Kenya",
		StartDate: strfmt.Date(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   strfmt.Date(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)),
		Page:      1,
		PageSize:  5,
		SortBy:    domain.DefaultSortField,
		SortDir:   domain.DefaultSortDirection,
	}
	return query.Compile(q, "event_date")
}

func TestNewPostgresEventStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() {
		NewPostgresEventStore(nil, config.QueryConfig{}, nil)
	})
}

func TestSearchReturnsPage(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WithArgs("2024-01-01", "2024-02-01", "Kenya").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	rows := sqlmock.NewRows(eventColumns).
		AddRow("KEN1001", time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			"Kenya", "Nairobi", "Protests", "Peaceful protest",
			"Protesters (Kenya)", "Police Forces of Kenya", 0, -1.2921, 36.8219).
		AddRow("KEN1002", time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
			"Kenya", nil, "Riots", "Violent demonstration",
			"Rioters (Kenya)", nil, 2, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WithArgs("2024-01-01", "2024-02-01", "Kenya", 5, 0).
		WillReturnRows(rows)

	page, err := s.Search(context.Background(), compiled, 5, 0)
	require.NoError(t, err)
	require.NotNil(t, page)

	assert.Equal(t, int64(12), page.Total)
	require.Len(t, page.Events, 2)

	first := page.Events[0]
	assert.Equal(t, "KEN1001", first.EventID)
	assert.Equal(t, "2024-01-05", first.EventDate.String())
	assert.Equal(t, "Nairobi", first.Admin1)
	assert.Equal(t, "Police Forces of Kenya", first.Actor2)
	require.NotNil(t, first.Latitude)
	assert.InDelta(t, -1.2921, *first.Latitude, 0.0001)

	// Null columns come back as empty strings and nil pointers.
	second := page.Events[1]
	assert.Equal(t, "", second.Admin1)
	assert.Equal(t, "", second.Actor2)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Longitude)
	assert.Equal(t, 2, second.Fatalities)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmptyPageIsNotNil(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	page, err := s.Search(context.Background(), compiled, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Events, "an empty page must encode as [], not null")
	assert.Len(t, page.Events, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCountError(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnError(&pgconn.PgError{Code: "42703", Message: "column does not exist"})

	page, err := s.Search(context.Background(), compiled, 5, 0)
	assert.Nil(t, page)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrQueryFailed)

	var qerr *store.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "count", qerr.Operation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchSelectError(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WillReturnError(&pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"})

	page, err := s.Search(context.Background(), compiled, 5, 0)
	assert.Nil(t, page)
	require.Error(t, err)

	var qerr *store.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "select", qerr.Operation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchConnectionError(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection terminated"})

	_, err := s.Search(context.Background(), compiled, 5, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConnectionFailed)
	assert.True(t, store.IsConnectionError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchScanError(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	rows := sqlmock.NewRows(eventColumns).
		AddRow("KEN1001", time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			"Kenya", "Nairobi", "Protests", "Peaceful protest",
			"Protesters (Kenya)", nil, "not-a-number", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WillReturnRows(rows)

	page, err := s.Search(context.Background(), compiled, 5, 0)
	assert.Nil(t, page)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrQueryFailed)

	var qerr *store.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "scan", qerr.Operation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchDoesNotMutateCompiledArgs(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)
	argsBefore := len(compiled.Args)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := s.Search(context.Background(), compiled, 5, 0)
	require.NoError(t, err)

	assert.Len(t, compiled.Args, argsBefore,
		"the window must bind into a copy of the compiled args")
}

func TestSearchReportsQueryTimings(t *testing.T) {
	s, mock := newTestEventStore(t)
	compiled := testCompiledQuery(t)

	mock.ExpectQuery(regexp.QuoteMeta(testCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(testSelectSQL)).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	var out bytes.Buffer
	emitter := emf.NewEmitter(config.MetricsConfig{
		Enabled:   true,
		Namespace: "ACLED/Trendfinder",
		Service:   "TrendfinderAPI",
		Stage:     "test",
		Function:  "trendfinder-api",
	}, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := emitter.NewRecord("/api/trends")
	ctx := emf.NewContext(context.Background(), rec)

	_, err := s.Search(ctx, compiled, 5, 0)
	require.NoError(t, err)
	rec.Flush()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	_, hasCount := doc[emf.MetricSQLCountTime]
	_, hasSelect := doc[emf.MetricSQLSelectTime]
	assert.True(t, hasCount, "count timing must be reported")
	assert.True(t, hasSelect, "select timing must be reported")
}
