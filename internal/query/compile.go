package query

import (
	"fmt"
	"strings"

	"github.com/phrazzld/trendfinder-api/internal/domain"
)

// CompiledQuery holds the SQL fragments derived from a validated query: a
// WHERE clause, an ORDER BY clause, and the bound parameters matched
// positionally to $n placeholders. The parameter count always equals the
// placeholder count; user-supplied values never appear in the SQL text.
type CompiledQuery struct {
	Where string
	Order string
	Args  []any
}

// tiebreakerColumn is appended to every ORDER BY so paging stays
// deterministic when rows tie on the chosen sort column.
const tiebreakerColumn = "event_id"

// Compile turns a validated query into SQL fragments. dateColumn is operator
// configuration, never caller input. The date range is half-open: start
// inclusive, end exclusive.
func Compile(q *domain.SearchQuery, dateColumn string) CompiledQuery {
	var (
		conditions []string
		args       []any
	)
	bind := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions = append(conditions,
		fmt.Sprintf("%s >= %s", dateColumn, bind(q.StartDate.String())),
		fmt.Sprintf("%s < %s", dateColumn, bind(q.EndDate.String())),
	)

	equality := []struct {
		column string
		value  string
	}{
		{"country", q.Country},
		{"event_type", q.EventType},
		{"sub_event_type", q.SubEventType},
		{"actor1", q.Actor1},
		{"actor2", q.Actor2},
	}
	for _, f := range equality {
		if f.value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = %s", f.column, bind(f.value)))
	}

	if q.Text != "" {
		pattern := "%" + q.Text + "%"
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE %s OR notes ILIKE %s)", bind(pattern), bind(pattern)))
	}

	order := fmt.Sprintf("ORDER BY %s %s, %s ASC",
		q.SortBy.Column(dateColumn), q.SortDir.SQL(), tiebreakerColumn)

	return CompiledQuery{
		Where: "WHERE " + strings.Join(conditions, " AND "),
		Order: order,
		Args:  args,
	}
}

// ParamsPreview renders the bound parameters for diagnostics, each value
// stringified and truncated to maxLen characters.
func (c CompiledQuery) ParamsPreview(maxLen int) []string {
	preview := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		s := fmt.Sprintf("%v", arg)
		if runes := []rune(s); maxLen > 0 && len(runes) > maxLen {
			s = string(runes[:maxLen])
		}
		preview = append(preview, s)
	}
	return preview
}
