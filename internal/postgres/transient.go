package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient reports lock-wait, deadlock, and serialization failures, the
// retryable class the caller sees as 503. Nothing here retries them.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "55P03", // lock_not_available
		"40P01", // deadlock_detected
		"40001": // serialization_failure
		return true
	}
	return false
}
