package emf

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/trendfinder-api/internal/config"
)

// Unit identifies the CloudWatch unit attached to a metric directive.
type Unit string

const (
	UnitCount        Unit = "Count"
	UnitMilliseconds Unit = "Milliseconds"
	UnitNone         Unit = "None"
)

// Metric names shared by the middleware, the handler, and the store. Keeping
// them here means a dashboard query and the code that feeds it cannot drift
// apart silently.
const (
	MetricRequests         = "Requests"
	MetricRequestsRejected = "RequestsRejected"
	MetricColdStart        = "ColdStart"
	MetricValidationTime   = "ValidationTimeMs"
	MetricSQLCountTime     = "SQLCountMs"
	MetricSQLSelectTime    = "SQLSelectMs"
	MetricRowsReturned     = "RowsReturned"
	MetricRowsTotal        = "RowsTotal"
	MetricPageSize         = "PageSize"
	MetricHandlerDuration  = "HandlerDurationMs"
	MetricErrors           = "Errors"
)

// Outcome classifies how a request ended. It is published as a dimension so
// error rates can be graphed without parsing log lines.
type Outcome string

const (
	OutcomeOK              Outcome = "OK"
	OutcomeValidationError Outcome = "ValidationError"
	OutcomeQueryError      Outcome = "QueryError"
	// OutcomeError is the default until a pipeline stage reports a result, so
	// a request that panics before reaching any stage still counts as an
	// error rather than vanishing from the Outcome dimension.
	OutcomeError Outcome = "Error"
)

// Emitter writes one embedded-metric-format line per flushed record. It is
// safe for concurrent use; concurrent flushes serialize on an internal mutex
// so lines never interleave.
type Emitter struct {
	cfg config.MetricsConfig
	log *slog.Logger

	mu  sync.Mutex
	out io.Writer

	coldStart atomic.Bool
}

// NewEmitter returns an emitter that writes to out, or to standard output
// when out is nil. The first record created after process start carries a
// ColdStart metric.
func NewEmitter(cfg config.MetricsConfig, out io.Writer, log *slog.Logger) *Emitter {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = slog.Default()
	}
	e := &Emitter{
		cfg: cfg,
		log: log.With(slog.String("component", "emf_emitter")),
		out: out,
	}
	e.coldStart.Store(true)
	return e
}

// NewRecord starts a record for one request against apiPath. When metrics are
// disabled it returns nil, which every Record method treats as a no-op, so
// callers never branch on the config themselves.
func (e *Emitter) NewRecord(apiPath string) *Record {
	if e == nil || !e.cfg.Enabled {
		return nil
	}
	r := &Record{
		emitter:    e,
		metricIdx:  make(map[string]*metric),
		properties: make(map[string]any),
		outcome:    OutcomeError,
	}
	r.addDimension("Service", e.cfg.Service)
	r.addDimension("Stage", e.cfg.Stage)
	r.addDimension("Function", e.cfg.Function)
	r.addDimension("ApiPath", apiPath)
	if e.coldStart.CompareAndSwap(true, false) {
		r.PutMetric(MetricColdStart, 1, UnitCount)
	}
	return r
}

func (e *Emitter) write(line []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.out.Write(append(line, '\n')); err != nil {
		e.log.Error("failed to write metrics record", slog.String("error", err.Error()))
	}
}

type dimension struct {
	name  string
	value string
}

type metric struct {
	name   string
	unit   Unit
	values []float64
}

// Record accumulates the metrics, dimensions and properties for a single
// request. All methods are nil-safe so disabled metrics cost callers nothing.
// A record belongs to one request and is not safe for use from multiple
// goroutines.
type Record struct {
	emitter    *Emitter
	dimensions []dimension
	metrics    []*metric
	metricIdx  map[string]*metric
	properties map[string]any
	outcome    Outcome
	flushed    bool
}

func (r *Record) addDimension(name, value string) {
	r.dimensions = append(r.dimensions, dimension{name: name, value: value})
}

// PutMetric records value under name. Repeated calls with the same name
// accumulate into a value array on the emitted line; the unit of the first
// call wins.
func (r *Record) PutMetric(name string, value float64, unit Unit) {
	if r == nil {
		return
	}
	if m, ok := r.metricIdx[name]; ok {
		m.values = append(m.values, value)
		return
	}
	m := &metric{name: name, unit: unit, values: []float64{value}}
	r.metrics = append(r.metrics, m)
	r.metricIdx[name] = m
}

// PutDuration records d under name in milliseconds.
func (r *Record) PutDuration(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.PutMetric(name, float64(d)/float64(time.Millisecond), UnitMilliseconds)
}

// SetProperty attaches a non-metric value to the emitted line. Properties are
// searchable in the log store but carry no metric directive.
func (r *Record) SetProperty(key string, value any) {
	if r == nil {
		return
	}
	r.properties[key] = value
}

// SetOutcome sets the Outcome dimension for this record. Later calls replace
// earlier ones, so a handler may downgrade OK to QueryError as it learns more.
func (r *Record) SetOutcome(o Outcome) {
	if r == nil {
		return
	}
	r.outcome = o
}

// Flush encodes the record and writes it as one line. Only the first call
// emits; later calls are no-ops, which lets a deferred flush coexist with an
// explicit one on the happy path.
func (r *Record) Flush() {
	if r == nil || r.flushed {
		return
	}
	r.flushed = true
	line, err := json.Marshal(r.document(time.Now()))
	if err != nil {
		r.emitter.log.Error("failed to encode metrics record", slog.String("error", err.Error()))
		return
	}
	r.emitter.write(line)
}

// document assembles the EMF envelope: dimension and metric values live at the
// top level, and the _aws block declares which of those keys are metrics and
// how they roll up.
func (r *Record) document(now time.Time) map[string]any {
	doc := make(map[string]any, len(r.dimensions)+len(r.metrics)+len(r.properties)+2)

	dimNames := make([]string, 0, len(r.dimensions)+1)
	for _, d := range r.dimensions {
		dimNames = append(dimNames, d.name)
		doc[d.name] = d.value
	}
	dimNames = append(dimNames, "Outcome")
	doc["Outcome"] = string(r.outcome)

	directives := make([]map[string]string, 0, len(r.metrics))
	for _, m := range r.metrics {
		directives = append(directives, map[string]string{"Name": m.name, "Unit": string(m.unit)})
		if len(m.values) == 1 {
			doc[m.name] = m.values[0]
		} else {
			doc[m.name] = m.values
		}
	}

	// Properties must not clobber a dimension or metric key.
	for k, v := range r.properties {
		if _, taken := doc[k]; taken {
			continue
		}
		doc[k] = v
	}

	doc["_aws"] = map[string]any{
		"Timestamp": now.UnixMilli(),
		"CloudWatchMetrics": []map[string]any{
			{
				"Namespace":  r.emitter.cfg.Namespace,
				"Dimensions": [][]string{dimNames},
				"Metrics":    directives,
			},
		},
	}
	return doc
}
