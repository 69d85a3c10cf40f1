// Package emf emits request metrics in CloudWatch Embedded Metric Format:
// one JSON object per invocation, written as a single line, carrying a
// metadata block that tells the metrics pipeline which top-level values are
// metrics and which dimensions they roll up under. Everything else on the
// object rides along as searchable properties.
//
// Each request gets one Record. The record accumulates counters, durations,
// dimensions and properties as the pipeline runs and is flushed exactly once
// when the request finishes, whatever path it took. Emission is best-effort:
// a record that cannot be encoded or written logs the failure and never
// disturbs the response.
package emf
