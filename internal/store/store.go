// Package store provides database access methods for the catalog's
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateTitle is returned when an insert or update collides with the
// unique index on item titles. The database constraint is the authoritative
// signal: two requests can pass the handler's pre-check concurrently, but
// only one of them commits.
var ErrDuplicateTitle = errors.New("item title already exists")

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
