package domain

import (
	"github.com/go-openapi/strfmt"
)

// Event is one conflict-event record as returned to API callers. Fields map
// one-to-one onto the columns the page query selects; nullable columns
// (coordinates, secondary actors) surface as pointers or empty strings so the
// JSON stays stable across sparse rows.
type Event struct {
	EventID      string      `json:"event_id"`
	EventDate    strfmt.Date `json:"event_date"`
	Country      string      `json:"country"`
	Admin1       string      `json:"admin1"`
	EventType    string      `json:"event_type"`
	SubEventType string      `json:"sub_event_type"`
	Actor1       string      `json:"actor1"`
	Actor2       string      `json:"actor2"`
	Fatalities   int         `json:"fatalities"`
	Latitude     *float64    `json:"latitude"`
	Longitude    *float64    `json:"longitude"`
}
