package domain

import (
	"github.com/go-openapi/strfmt"
)

// SortField enumerates the columns callers may sort by. The set is closed:
// anything outside it is rejected during validation, and Column refuses to
// resolve unknown values, so a raw identifier can never reach an ORDER BY.
type SortField string

const (
	SortByEventDate  SortField = "event_date"
	SortByFatalities SortField = "fatalities"
	SortByCountry    SortField = "country"
)

// DefaultSortField is applied when the caller does not choose a sort column.
const DefaultSortField = SortByEventDate

// sortColumns maps each sort field to the column emitted in ORDER BY.
var sortColumns = map[SortField]string{
	SortByEventDate:  "event_date",
	SortByFatalities: "fatalities",
	SortByCountry:    "country",
}

// Column resolves the ORDER BY column for f. Values outside the allow-list
// resolve to fallback (the configured date column), matching the contract's
// sort default.
func (f SortField) Column(fallback string) string {
	if col, ok := sortColumns[f]; ok {
		return col
	}
	return fallback
}

// SortFields returns the allowed sort fields in contract order.
func SortFields() []SortField {
	return []SortField{SortByEventDate, SortByFatalities, SortByCountry}
}

// SortDirection is the ordering direction of the user-chosen sort column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DefaultSortDirection is applied when the caller does not choose one.
const DefaultSortDirection = SortDesc

// SQL returns the ORDER BY keyword for d. Only the exact value "desc" sorts
// descending; anything else is ascending.
func (d SortDirection) SQL() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// SearchQuery is the validated form of a trends request. It is produced only
// by the query validator and never constructed from unchecked input, so
// downstream code may rely on its invariants: Country is non-empty,
// StartDate <= EndDate, Page >= 1, and 1 <= PageSize <= the configured
// maximum. Optional filters are empty strings when absent.
type SearchQuery struct {
	Country      string
	StartDate    strfmt.Date
	EndDate      strfmt.Date
	Page         int
	PageSize     int
	SortBy       SortField
	SortDir      SortDirection
	Text         string
	EventType    string
	SubEventType string
	Actor1       string
	Actor2       string
}
