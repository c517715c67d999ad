package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus means a conditional status update matched no rows:
	// either the booking vanished or another request changed the status
	// first. The caller re-reads and re-validates.
	ErrStaleStatus = errors.New("status precondition failed")
)

// IsUniqueViolation reports whether err comes from a unique constraint.
// Postgres surfaces SQLSTATE 23505 via pgconn; sqlite only gives us the
// message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "duplicate key value violates unique constraint") ||
		strings.Contains(s, "23505")
}

// IsOverbookingViolation reports whether err comes from idx_no_overbooking,
// the partial unique index keeping one active booking per mechanic per date.
// Callers check this before the generic unique-violation retry: an occupied
// date is a schedule conflict, not a number collision.
func IsOverbookingViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "idx_no_overbooking"
	}
	s := err.Error()
	return strings.Contains(s, "idx_no_overbooking") ||
		strings.Contains(s, "bookings.mechanic_id")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
