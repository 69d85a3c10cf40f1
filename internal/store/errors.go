package store

import (
	"errors"
	"fmt"
)

// Common store errors used across store implementations. The service is
// read-only, so the taxonomy is small: either the query could not run at all
// (connection-level) or it ran and failed (execution-level). Both map to the
// same opaque 500 for callers; the split exists for logs and metrics.
var (
	// ErrQueryFailed is returned when a query executes but fails, whether from
	// a syntax or type error, a scan mismatch, or a runtime failure in the store.
	ErrQueryFailed = errors.New("query failed")

	// ErrConnectionFailed is returned when the store cannot be reached or a
	// pooled connection turns out to be broken. The database/sql pool retires
	// such connections; this error still surfaces for the request that hit it.
	ErrConnectionFailed = errors.New("database connection failed")
)

// IsConnectionError reports whether err stems from losing the store rather
// than from the query itself.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// QueryError carries context about which part of the search failed. It wraps
// one of the sentinel errors above so callers can continue to use errors.Is.
type QueryError struct {
	Operation string // the step that failed (e.g. "count", "select", "scan")
	Err       error  // wrapped error, includes a sentinel in its chain
}

// Error implements the error interface for QueryError.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError creates a QueryError for the given operation.
func NewQueryError(operation string, err error) *QueryError {
	return &QueryError{Operation: operation, Err: err}
}
