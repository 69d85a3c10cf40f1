package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
	"github.com/phrazzld/trendfinder-api/internal/query"
	"github.com/phrazzld/trendfinder-api/internal/redact"
)

// Error codes carried in the error field of failure responses.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
)

// Client-facing failure messages. Fixed strings: failure bodies never carry
// request-derived or internal detail beyond the field error list.
const (
	MsgContractViolation = "Request did not match the API contract"
	MsgInternalError     = "An unexpected error occurred"
)

// ErrorResponse defines the standard error response structure. Details is
// populated only for contract violations.
type ErrorResponse struct {
	Error         string             `json:"error"`
	Message       string             `json:"message"`
	Details       []query.FieldError `json:"details,omitempty"`
	CorrelationID string             `json:"correlation_id"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Error(
			"failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithFieldErrors writes the 400 failure shape carrying the complete
// list of contract violations.
func RespondWithFieldErrors(w http.ResponseWriter, r *http.Request, details []query.FieldError) {
	RespondWithJSON(w, r, http.StatusBadRequest, ErrorResponse{
		Error:         ErrCodeBadRequest,
		Message:       MsgContractViolation,
		Details:       details,
		CorrelationID: CorrelationID(r.Context()),
	})
}

// RespondWithInternalError writes the opaque 500 failure shape and logs the
// underlying cause. The cause appears redacted in the log only; the response
// body never carries it.
func RespondWithInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", http.StatusInternalServerError),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}
	log.LogAttrs(r.Context(), slog.LevelError, "request failed", attrs...)

	RespondWithJSON(w, r, http.StatusInternalServerError, ErrorResponse{
		Error:         ErrCodeInternalError,
		Message:       MsgInternalError,
		CorrelationID: CorrelationID(r.Context()),
	})
}
