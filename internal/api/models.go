package api

import (
	"github.com/phrazzld/trendfinder-api/internal/domain"
)

// SortMeta echoes the effective sort back to the caller.
type SortMeta struct {
	By  string `json:"by"`
	Dir string `json:"dir"`
}

// DebugLimits reports the paging limits in force for the request.
type DebugLimits struct {
	PageSize int `json:"page_size"`
	HardCap  int `json:"hard_cap"`
}

// DebugRuntime carries host diagnostics for the debug block. Values a probe
// could not determine are zero, never an error.
type DebugRuntime struct {
	Hostname  string `json:"hostname"`
	PID       int    `json:"pid"`
	GoVersion string `json:"go_version"`
	MemoryMB  int    `json:"memory_mb"`
}

// DebugMeta is the diagnostic block granted by a valid debug key: the
// compiled SQL fragments, a bounded preview of the bound parameters, the
// effective limits, and runtime information. Diagnostic only; it never
// widens what data the filters scope.
type DebugMeta struct {
	WhereSQL      string       `json:"where_sql"`
	OrderSQL      string       `json:"order_sql"`
	ParamsPreview []string     `json:"params_preview"`
	Limits        DebugLimits  `json:"limits"`
	Runtime       DebugRuntime `json:"runtime"`
	Validation    string       `json:"validation"`
}

// Meta is the envelope metadata on every successful response.
type Meta struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	Total         int64             `json:"total"`
	TotalPages    int               `json:"total_pages"`
	Sort          SortMeta          `json:"sort"`
	Filters       map[string]string `json:"filters"`
	CorrelationID string            `json:"correlation_id"`
	Debug         *DebugMeta        `json:"debug,omitempty"`
}

// TrendsResponse is the 200 envelope for a search. Data is [] when the page
// is empty, never null.
type TrendsResponse struct {
	Meta Meta           `json:"meta"`
	Data []domain.Event `json:"data"`
}
