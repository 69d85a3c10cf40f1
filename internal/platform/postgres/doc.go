// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces. It translates compiled search fragments into the count and page
// queries, maps driver-level failures onto the store's sentinel errors, and
// reports query timings to the request's metrics record when one is present.
package postgres
