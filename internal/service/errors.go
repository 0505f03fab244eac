package service

import (
	"errors"
	"fmt"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository"
)

// Error taxonomy of the booking engine. Storage-detected kinds alias the
// repository sentinels so a constraint violation from the atomic write and a
// failed pre-check surface as the same error to callers.
var (
	ErrValidation          = errors.New("invalid input")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNotFound            = repository.ErrNotFound
	ErrConflict            = repository.ErrConflict
	ErrInsufficientCredits = repository.ErrInsufficientCredits
	ErrInternal            = errors.New("internal error")
)

// validationf wraps ErrValidation with a caller-correctable detail message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// conflictf wraps ErrConflict with detail.
func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// internal classifies unexpected collaborator failures. Business sentinels
// pass through untouched so errors.Is keeps working at the transport layer.
func internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInsufficientCredits) ||
		errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
