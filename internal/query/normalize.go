package query

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Params is the canonical string-keyed form of a request's raw parameters:
// keys lowercased, multi-valued inputs flattened to their first value.
type Params map[string]string

// NormalizeQuery canonicalizes a parsed query string. Keys are lowercased,
// empty values are dropped (so "?country=" reads as absent, not blank), and
// only the first non-empty value of a repeated parameter is kept. When two
// raw keys collide after lowercasing, the first in byte order wins; iteration
// is over sorted keys so the result is deterministic for identical requests.
func NormalizeQuery(values url.Values) Params {
	return normalize(values)
}

// NormalizeHeader canonicalizes request headers the same way. Header lookup
// elsewhere in the pipeline goes through the normalized map so the debug
// gate and correlation handling never depend on header-name casing.
func NormalizeHeader(header http.Header) Params {
	return normalize(header)
}

func normalize(raw map[string][]string) Params {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(Params, len(raw))
	for _, k := range keys {
		value, ok := firstNonEmpty(raw[k])
		if !ok {
			continue
		}
		lower := strings.ToLower(k)
		if _, exists := params[lower]; exists {
			continue
		}
		params[lower] = value
	}
	return params
}

func firstNonEmpty(values []string) (string, bool) {
	for _, v := range values {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
