package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database access layer for read queries. It is
// implemented by both *sql.DB and *sql.Tx, so store code works against a
// pooled connection or a transaction without caring which.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
