package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/domain"
)

// FieldError describes one contract violation discovered during validation.
// A 400 response carries the full list, one entry per offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// searchForm carries the trimmed raw parameters through struct-tag
// validation. Tags mirror the published contract; integer conversion and the
// date-order check happen afterwards so every violation is still collected in
// a single pass.
type searchForm struct {
	Country      string `param:"country"        validate:"required,min=2"`
	StartDate    string `param:"start_date"     validate:"required,datetime=2006-01-02"`
	EndDate      string `param:"end_date"       validate:"required,datetime=2006-01-02"`
	SortBy       string `param:"sort_by"        validate:"omitempty,oneof=event_date fatalities country"`
	SortDir      string `param:"sort_dir"       validate:"omitempty,oneof=asc desc"`
	Text         string `param:"q"              validate:"omitempty,min=1,max=200"`
	EventType    string `param:"event_type"     validate:"omitempty,min=1"`
	SubEventType string `param:"sub_event_type" validate:"omitempty,min=1"`
	Actor1       string `param:"actor1"         validate:"omitempty,min=1"`
	Actor2       string `param:"actor2"         validate:"omitempty,min=1"`
}

// validate is shared across requests; validator.Validate is safe for
// concurrent use. The tag name func makes validator report contract parameter
// names ("start_date") instead of Go field names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("param"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// fieldOrder fixes the order field errors are reported in, following the
// parameter order of the published contract so the details list is identical
// for identical requests.
var fieldOrder = map[string]int{
	"country":        0,
	"start_date":     1,
	"end_date":       2,
	"page":           3,
	"page_size":      4,
	"sort_by":        5,
	"sort_dir":       6,
	"q":              7,
	"event_type":     8,
	"sub_event_type": 9,
	"actor1":         10,
	"actor2":         11,
}

// Validate checks the canonical parameters against the contract. It returns
// either a fully-populated SearchQuery (defaults applied, page_size clamped
// to cfg.MaxPageSize) or the complete list of field errors, never both. The
// error list is never partial: all violations are discovered in one pass.
func Validate(params Params, cfg config.QueryConfig) (*domain.SearchQuery, []FieldError) {
	form := searchForm{
		Country:      strings.TrimSpace(params["country"]),
		StartDate:    strings.TrimSpace(params["start_date"]),
		EndDate:      strings.TrimSpace(params["end_date"]),
		SortBy:       strings.TrimSpace(params["sort_by"]),
		SortDir:      strings.TrimSpace(params["sort_dir"]),
		Text:         strings.TrimSpace(params["q"]),
		EventType:    strings.TrimSpace(params["event_type"]),
		SubEventType: strings.TrimSpace(params["sub_event_type"]),
		Actor1:       strings.TrimSpace(params["actor1"]),
		Actor2:       strings.TrimSpace(params["actor2"]),
	}

	var fieldErrors []FieldError
	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// Only reachable if the form struct itself is broken.
			return nil, []FieldError{{Field: "request", Message: "could not be validated"}}
		}
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, FieldError{Field: fe.Field(), Message: tagMessage(fe)})
		}
	}

	// Optional fields trim to empty only when the caller supplied pure
	// whitespace; absent parameters never reach the map at all.
	for _, opt := range []string{"q", "event_type", "sub_event_type", "actor1", "actor2"} {
		if raw, ok := params[opt]; ok && strings.TrimSpace(raw) == "" {
			fieldErrors = append(fieldErrors, FieldError{Field: opt, Message: "must not be empty"})
		}
	}

	page := 1
	if raw := strings.TrimSpace(params["page"]); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fieldErrors = append(fieldErrors, FieldError{Field: "page", Message: "must be an integer"})
		case n < 1:
			fieldErrors = append(fieldErrors, FieldError{Field: "page", Message: "must be at least 1"})
		default:
			page = n
		}
	}

	pageSize := cfg.DefaultPageSize
	if raw := strings.TrimSpace(params["page_size"]); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fieldErrors = append(fieldErrors, FieldError{Field: "page_size", Message: "must be an integer"})
		case n < 1:
			fieldErrors = append(fieldErrors, FieldError{Field: "page_size", Message: "must be at least 1"})
		case n > cfg.MaxPageSize:
			// Oversized values clamp to the configured maximum instead of
			// failing; the contract documents this.
			pageSize = cfg.MaxPageSize
		default:
			pageSize = n
		}
	}

	var startDate, endDate strfmt.Date
	startOK, endOK := false, false
	if t, err := time.Parse(strfmt.RFC3339FullDate, form.StartDate); err == nil {
		startDate = strfmt.Date(t)
		startOK = true
	}
	if t, err := time.Parse(strfmt.RFC3339FullDate, form.EndDate); err == nil {
		endDate = strfmt.Date(t)
		endOK = true
	}
	if startOK && endOK && time.Time(endDate).Before(time.Time(startDate)) {
		fieldErrors = append(fieldErrors, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}

	if len(fieldErrors) > 0 {
		sortFieldErrors(fieldErrors)
		return nil, fieldErrors
	}

	q := &domain.SearchQuery{
		Country:      form.Country,
		StartDate:    startDate,
		EndDate:      endDate,
		Page:         page,
		PageSize:     pageSize,
		SortBy:       domain.DefaultSortField,
		SortDir:      domain.DefaultSortDirection,
		Text:         form.Text,
		EventType:    form.EventType,
		SubEventType: form.SubEventType,
		Actor1:       form.Actor1,
		Actor2:       form.Actor2,
	}
	if form.SortBy != "" {
		q.SortBy = domain.SortField(form.SortBy)
	}
	if form.SortDir != "" {
		q.SortDir = domain.SortDirection(form.SortDir)
	}
	return q, nil
}

// tagMessage translates a validator tag failure into the human-readable
// reason carried in the error details.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return "is invalid"
	}
}

func sortFieldErrors(errs []FieldError) {
	sort.SliceStable(errs, func(i, j int) bool {
		ri, ok := fieldOrder[errs[i].Field]
		if !ok {
			ri = len(fieldOrder)
		}
		rj, ok := fieldOrder[errs[j].Field]
		if !ok {
			rj = len(fieldOrder)
		}
		return ri < rj
	})
}
