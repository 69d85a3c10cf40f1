package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortFieldColumn(t *testing.T) {
	tests := []struct {
		name     string
		field    SortField
		fallback string
		want     string
	}{
		{name: "event date maps to its column", field: SortByEventDate, fallback: "occurred_on", want: "event_date"},
		{name: "fatalities maps to its column", field: SortByFatalities, fallback: "occurred_on", want: "fatalities"},
		{name: "country maps to its column", field: SortByCountry, fallback: "occurred_on", want: "country"},
		{name: "unknown field resolves to fallback", field: SortField("fatalities; --"), fallback: "occurred_on", want: "occurred_on"},
		{name: "empty field resolves to fallback", field: SortField(""), fallback: "occurred_on", want: "occurred_on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Column(tt.fallback))
		})
	}
}

func TestSortDirectionSQL(t *testing.T) {
	assert.Equal(t, "DESC", SortDesc.SQL())
	assert.Equal(t, "ASC", SortAsc.SQL())
	// Anything that is not exactly "desc" sorts ascending.
	assert.Equal(t, "ASC", SortDirection("DESC").SQL())
	assert.Equal(t, "ASC", SortDirection("").SQL())
}

func TestSortFieldsIsClosed(t *testing.T) {
	fields := SortFields()
	assert.Equal(t, []SortField{SortByEventDate, SortByFatalities, SortByCountry}, fields)
	for _, f := range fields {
		assert.NotEqual(t, "", f.Column(""), "every allowed sort field must resolve to a real column")
	}
}
