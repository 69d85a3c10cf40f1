package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/trendfinder-api/internal/api/shared"
	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/platform/emf"
	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
	"github.com/phrazzld/trendfinder-api/internal/query"
	"github.com/phrazzld/trendfinder-api/internal/store"
)

// paramsPreviewLen caps each stringified bound parameter in the debug block.
const paramsPreviewLen = 64

// TrendsHandler serves GET /api/trends: normalize, validate, compile, query,
// paginate, envelope.
type TrendsHandler struct {
	events   store.EventStore
	queryCfg config.QueryConfig
	gate     *DebugGate
	logger   *slog.Logger
}

// NewTrendsHandler creates a new TrendsHandler
func NewTrendsHandler(
	events store.EventStore,
	queryCfg config.QueryConfig,
	gate *DebugGate,
	logger *slog.Logger,
) *TrendsHandler {
	if events == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("event store cannot be nil for TrendsHandler")
	}
	if gate == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("debug gate cannot be nil for TrendsHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TrendsHandler")
	}

	return &TrendsHandler{
		events:   events,
		queryCfg: queryCfg,
		gate:     gate,
		logger:   logger.With(slog.String("component", "trends_handler")),
	}
}

// Search handles GET /api/trends requests. Identical requests produce
// identical envelopes apart from correlation_id and debug runtime values; the
// handler keeps no state between calls.
func (h *TrendsHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)
	rec := emf.FromContext(ctx)

	params := query.NormalizeQuery(r.URL.Query())
	headers := query.NormalizeHeader(r.Header)

	// The gate is resolved before validation so a rejected request still
	// reveals nothing extra to callers without a key.
	debugOn := h.gate.Enabled(headers, params)

	validateStart := time.Now()
	q, fieldErrors := query.Validate(params, h.queryCfg)
	rec.PutDuration(emf.MetricValidationTime, time.Since(validateStart))

	if len(fieldErrors) > 0 {
		rec.PutMetric(emf.MetricRequestsRejected, 1, emf.UnitCount)
		rec.SetOutcome(emf.OutcomeValidationError)
		log.Warn("request rejected by validation",
			slog.Int("violation_count", len(fieldErrors)))
		shared.RespondWithFieldErrors(w, r, fieldErrors)
		return
	}

	rec.SetProperty("country", q.Country)
	rec.SetProperty("sort_by", string(q.SortBy))
	rec.SetProperty("sort_dir", string(q.SortDir))
	rec.SetProperty("debug_on", debugOn)
	rec.PutMetric(emf.MetricPageSize, float64(q.PageSize), emf.UnitCount)

	compiled := query.Compile(q, h.queryCfg.DateColumn)
	limit, offset := query.Window(q.Page, q.PageSize)

	// The SQL fragments carry placeholders only, never user values, so they
	// are safe to log. Promoted to info for debug-gated requests.
	planLevel := slog.LevelDebug
	if debugOn {
		planLevel = slog.LevelInfo
	}
	log.Log(ctx, planLevel, "sql planned",
		slog.String("where_sql", compiled.Where),
		slog.String("order_sql", compiled.Order),
		slog.Int("param_count", len(compiled.Args)))

	page, err := h.events.Search(ctx, compiled, limit, offset)
	if err != nil {
		rec.SetOutcome(emf.OutcomeQueryError)
		rec.PutMetric(emf.MetricErrors, 1, emf.UnitCount)
		shared.RespondWithInternalError(w, r, err)
		return
	}

	data := page.Events
	var debug *DebugMeta
	if debugOn {
		if max := h.gate.MaxRows(); len(data) > max {
			data = data[:max]
		}
		debug = &DebugMeta{
			WhereSQL:      compiled.Where,
			OrderSQL:      compiled.Order,
			ParamsPreview: compiled.ParamsPreview(paramsPreviewLen),
			Limits: DebugLimits{
				PageSize: q.PageSize,
				HardCap:  h.queryCfg.MaxPageSize,
			},
			Runtime:    collectRuntime(),
			Validation: "ok",
		}
	}

	// RowsReturned counts what the response actually carries, after any debug
	// truncation; RowsTotal is the full match count.
	rec.PutMetric(emf.MetricRowsReturned, float64(len(data)), emf.UnitCount)
	rec.PutMetric(emf.MetricRowsTotal, float64(page.Total), emf.UnitCount)
	rec.SetOutcome(emf.OutcomeOK)

	log.Info("search completed",
		slog.String("country", q.Country),
		slog.Int64("total", page.Total),
		slog.Int("rows_returned", len(data)),
		slog.Int("page", q.Page))

	shared.RespondWithJSON(w, r, http.StatusOK, TrendsResponse{
		Meta: Meta{
			Page:          q.Page,
			PageSize:      q.PageSize,
			Total:         page.Total,
			TotalPages:    query.TotalPages(page.Total, q.PageSize),
			Sort:          SortMeta{By: string(q.SortBy), Dir: string(q.SortDir)},
			Filters:       params,
			CorrelationID: shared.CorrelationID(ctx),
			Debug:         debug,
		},
		Data: data,
	})
}
