package middleware

import (
	"net/http"
)

// The CORS policy is fixed and mirrors the published contract: any origin may
// read the API, and only the headers the contract names may be sent.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET,OPTIONS"
	corsAllowHeaders = "Content-Type,Authorization,X-Debug-Key,X-Correlation-Id"
)

// CORSMiddleware attaches the policy headers to every response, error
// responses included, and answers preflight requests without invoking the
// rest of the pipeline.
type CORSMiddleware struct{}

// NewCORSMiddleware creates a new CORSMiddleware
func NewCORSMiddleware() *CORSMiddleware {
	return &CORSMiddleware{}
}

// Handle returns the middleware function applying the CORS policy.
func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
