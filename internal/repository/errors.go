// Package repository implements PostgreSQL persistence for the scheduling
// core. Sentinel errors defined here let the service and transport layers
// distinguish business outcomes from raw storage failures; in particular,
// constraint violations raised by the atomic booking write are translated to
// the same sentinels the service's pre-checks produce.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with an existing active
// lesson, either detected up front or rejected by the overlap constraint.
var ErrConflict = errors.New("booking conflict")

// ErrInsufficientCredits is returned when a debit would drive a student's
// credit balance negative.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Postgres error codes surfaced by the lessons/users constraints.
const (
	pgUniqueViolation    = "23505"
	pgCheckViolation     = "23514"
	pgExclusionViolation = "23P01"
)

// mapConstraintErr rewrites constraint violations from the atomic booking
// write into the matching sentinel. The pre-flight checks in the service are
// advisory only; this mapping is what makes the database the authoritative
// guard without leaking raw pg errors to callers.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgExclusionViolation, pgUniqueViolation:
		return ErrConflict
	case pgCheckViolation:
		if pgErr.ConstraintName == "users_credits_non_negative" {
			return ErrInsufficientCredits
		}
		return err
	default:
		return err
	}
}
