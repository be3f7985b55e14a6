package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories and the tx manager react to.
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeUniqueViolation      = "23505"
	CodeExclusionViolation   = "23P01"
)

// HasSQLState reports whether err wraps a postgres error with the given SQLSTATE.
func HasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// IsSerializationFailure reports errors that are safe to retry with a fresh transaction.
func IsSerializationFailure(err error) bool {
	return HasSQLState(err, CodeSerializationFailure) || HasSQLState(err, CodeDeadlockDetected)
}
