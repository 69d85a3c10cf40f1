package emf

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/trendfinder-api/internal/config"
)

func testMetricsConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:   true,
		Namespace: "ACLED/Trendfinder",
		Service:   "TrendfinderAPI",
		Stage:     "test",
		Function:  "trendfinder-api",
	}
}

func newTestEmitter(t *testing.T, out io.Writer) *Emitter {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEmitter(testMetricsConfig(), out, log)
}

// decodeLines splits the emitter output into one decoded document per line.
func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	raw := strings.TrimSpace(out.String())
	if raw == "" {
		return nil
	}
	var docs []map[string]any
	for _, line := range strings.Split(raw, "\n") {
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &doc), "each emitted line must be valid JSON")
		docs = append(docs, doc)
	}
	return docs
}

// awsBlock digs the CloudWatchMetrics declaration out of a decoded document.
func awsBlock(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()
	aws, ok := doc["_aws"].(map[string]any)
	require.True(t, ok, "document must carry an _aws block")
	cw, ok := aws["CloudWatchMetrics"].([]any)
	require.True(t, ok, "_aws must declare CloudWatchMetrics")
	require.Len(t, cw, 1)
	decl, ok := cw[0].(map[string]any)
	require.True(t, ok)
	return decl
}

func declaredMetrics(t *testing.T, doc map[string]any) map[string]string {
	t.Helper()
	decl := awsBlock(t, doc)
	raw, ok := decl["Metrics"].([]any)
	require.True(t, ok)
	units := make(map[string]string, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		require.True(t, ok)
		units[m["Name"].(string)] = m["Unit"].(string)
	}
	return units
}

func TestNewRecordNilWhenDisabled(t *testing.T) {
	var out bytes.Buffer
	cfg := testMetricsConfig()
	cfg.Enabled = false
	e := NewEmitter(cfg, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := e.NewRecord("/api/trends")
	assert.Nil(t, rec)

	// Every method must absorb the nil receiver.
	rec.PutMetric(MetricRequests, 1, UnitCount)
	rec.PutDuration(MetricHandlerDuration, time.Second)
	rec.SetProperty("correlation_id", "abc")
	rec.SetOutcome(OutcomeOK)
	rec.Flush()

	assert.Zero(t, out.Len(), "disabled emitter must write nothing")
}

func TestFlushEmitsSingleLine(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	require.NotNil(t, rec)
	rec.PutMetric(MetricRequests, 1, UnitCount)
	rec.PutDuration(MetricHandlerDuration, 250*time.Millisecond)
	rec.SetProperty("correlation_id", "corr-123")
	rec.SetOutcome(OutcomeOK)
	rec.Flush()

	docs := decodeLines(t, &out)
	require.Len(t, docs, 1)
	doc := docs[0]

	assert.Equal(t, "TrendfinderAPI", doc["Service"])
	assert.Equal(t, "test", doc["Stage"])
	assert.Equal(t, "trendfinder-api", doc["Function"])
	assert.Equal(t, "/api/trends", doc["ApiPath"])
	assert.Equal(t, "OK", doc["Outcome"])
	assert.Equal(t, "corr-123", doc["correlation_id"])
	assert.Equal(t, float64(1), doc["Requests"])
	assert.Equal(t, float64(250), doc["HandlerDurationMs"])

	decl := awsBlock(t, doc)
	assert.Equal(t, "ACLED/Trendfinder", decl["Namespace"])

	dims, ok := decl["Dimensions"].([]any)
	require.True(t, ok)
	require.Len(t, dims, 1)
	dimSet, ok := dims[0].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Service", "Stage", "Function", "ApiPath", "Outcome"}, dimSet)

	units := declaredMetrics(t, doc)
	assert.Equal(t, "Count", units[MetricRequests])
	assert.Equal(t, "Milliseconds", units[MetricHandlerDuration])

	aws, ok := doc["_aws"].(map[string]any)
	require.True(t, ok)
	ts, ok := aws["Timestamp"].(float64)
	require.True(t, ok, "timestamp must be numeric epoch milliseconds")
	assert.InDelta(t, float64(time.Now().UnixMilli()), ts, float64(time.Minute/time.Millisecond))
}

func TestFlushOnlyEmitsOnce(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	rec.PutMetric(MetricRequests, 1, UnitCount)
	rec.Flush()
	rec.Flush()
	rec.Flush()

	assert.Len(t, decodeLines(t, &out), 1, "repeated flushes must not emit duplicate lines")
}

func TestColdStartOnlyOnFirstRecord(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	first := e.NewRecord("/api/trends")
	first.Flush()
	second := e.NewRecord("/api/trends")
	second.Flush()

	docs := decodeLines(t, &out)
	require.Len(t, docs, 2)

	assert.Equal(t, float64(1), docs[0][MetricColdStart])
	_, present := docs[1][MetricColdStart]
	assert.False(t, present, "cold start must only be reported once per process")
}

func TestOutcomeDefaultsToError(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	rec.Flush()

	docs := decodeLines(t, &out)
	require.Len(t, docs, 1)
	assert.Equal(t, "Error", docs[0]["Outcome"],
		"a record flushed before any stage reports must classify as an error")
}

func TestRepeatedMetricAccumulates(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	rec.PutMetric(MetricErrors, 1, UnitCount)
	rec.PutMetric(MetricErrors, 1, UnitCount)
	rec.Flush()

	docs := decodeLines(t, &out)
	require.Len(t, docs, 1)
	assert.Equal(t, []any{float64(1), float64(1)}, docs[0][MetricErrors])

	units := declaredMetrics(t, docs[0])
	assert.Equal(t, "Count", units[MetricErrors])
}

func TestPropertyCannotShadowDimension(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	rec.SetProperty("Service", "spoofed")
	rec.SetProperty("path", "/api/trends")
	rec.Flush()

	docs := decodeLines(t, &out)
	require.Len(t, docs, 1)
	assert.Equal(t, "TrendfinderAPI", docs[0]["Service"])
	assert.Equal(t, "/api/trends", docs[0]["path"])
}

func TestNilEmitterProducesNilRecord(t *testing.T) {
	var e *Emitter
	rec := e.NewRecord("/api/trends")
	assert.Nil(t, rec)
}

func TestFromContextWithoutRecord(t *testing.T) {
	rec := FromContext(context.Background())
	assert.Nil(t, rec)

	// The nil result must still be usable.
	rec.PutMetric(MetricRowsReturned, 10, UnitCount)
	rec.Flush()
}

func TestContextRoundTrip(t *testing.T) {
	var out bytes.Buffer
	e := newTestEmitter(t, &out)

	rec := e.NewRecord("/api/trends")
	ctx := NewContext(context.Background(), rec)
	assert.Same(t, rec, FromContext(ctx))
}
