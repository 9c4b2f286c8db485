package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors forming the service error taxonomy. Handlers map these to
// HTTP statuses; everything else is treated as ErrUnavailable.
var (
	// ErrNotFound covers bad references and, for guest-facing callers,
	// suspended events.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed input: empty names, negative counts,
	// unknown themes, bad timestamps.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when an organizer-only operation is
	// attempted without the management key or a matching owner account.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is a uniqueness-constraint violation. RSVP upserts absorb
	// it inside a single conditional write; short-code generation retries it.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means the backing store could not be reached in time.
	// Callers may retry with backoff.
	ErrUnavailable = errors.New("store unavailable")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError folds driver errors into the sentinel taxonomy.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			// Writing a guest against a missing event.
			return ErrNotFound
		case pgCheckViolation:
			return ErrValidation
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable
	}
	return ErrUnavailable
}
