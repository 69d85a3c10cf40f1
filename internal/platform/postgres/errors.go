package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/trendfinder-api/internal/store"
)

// PostgreSQL SQLSTATE class prefixes
const (
	// connectionExceptionClass covers SQLSTATE class 08: the connection was
	// never established or died mid-query.
	connectionExceptionClass = "08"

	// insufficientResourcesClass covers SQLSTATE class 53, which includes
	// too_many_connections and out-of-memory conditions.
	insufficientResourcesClass = "53"

	// operatorInterventionClass covers SQLSTATE class 57: the server is
	// shutting down or refusing new work.
	operatorInterventionClass = "57"
)

// mapError wraps a driver error in the store's sentinel taxonomy so callers
// can classify failures with errors.Is without importing driver packages.
// The operation names the step that failed and survives into logs; the raw
// driver message is preserved as text only, never as a wrapped error, so
// driver types cannot leak past the store boundary.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	sentinel := store.ErrQueryFailed
	if isConnectionFailure(err) {
		sentinel = store.ErrConnectionFailed
	}
	return store.NewQueryError(operation, fmt.Errorf("%w: %v", sentinel, err))
}

// isConnectionFailure reports whether err means the database could not be
// reached, as opposed to a fault in the query itself.
func isConnectionFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case connectionExceptionClass, insufficientResourcesClass, operatorInterventionClass:
			return true
		}
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
