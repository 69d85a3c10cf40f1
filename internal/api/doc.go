// Package api provides HTTP handlers for the API.
//
// The trends handler runs the read pipeline for GET /api/trends: the raw
// request is normalized to canonical parameters, validated against the
// contract, compiled to parameterized SQL, executed through the event store,
// and wrapped in the response envelope. Debug diagnostics are gated on a
// configured key and only ever narrow the response, never widen it.
package api
