// Package store defines the interface for executing compiled event searches.
// It abstracts the underlying database from the request pipeline, so the
// validation and compilation logic stays independent of the specific
// database technology behind the events table.
package store
