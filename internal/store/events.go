package store

import (
	"context"

	"github.com/phrazzld/trendfinder-api/internal/domain"
	"github.com/phrazzld/trendfinder-api/internal/query"
)

// EventPage is one page of search results together with the total number of
// rows matching the filters. Events is never nil; an empty page is an empty
// slice so the response encodes as [].
type EventPage struct {
	Total  int64
	Events []domain.Event
}

// EventStore executes compiled searches against the events table.
type EventStore interface {
	// Search runs the count and page queries for the compiled filters and
	// returns the requested window. Failures are wrapped in the package's
	// sentinel errors; callers treat them as opaque execution failures.
	Search(ctx context.Context, compiled query.CompiledQuery, limit, offset int) (*EventPage, error)
}
