package emf

import "context"

// recordKey is an unexported type for the context key, preventing collisions
// with keys defined in other packages.
type recordKey struct{}

// NewContext returns a copy of ctx carrying rec. A nil record is stored as-is;
// FromContext hands it back and the nil-safe Record methods absorb the calls.
func NewContext(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordKey{}, rec)
}

// FromContext returns the record carried by ctx, or nil when the request has
// none. Callers use the result directly without a nil check.
func FromContext(ctx context.Context) *Record {
	rec, _ := ctx.Value(recordKey{}).(*Record)
	return rec
}
