package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-repairs/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Error kinds returned by the core operations. Test with errors.Is.
var (
	ErrNotFound          = errors.New("not_found")
	ErrValidation        = errors.New("validation_failed")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrAlreadySettled    = errors.New("already_settled")
	ErrNoOp              = errors.New("no_op")
	ErrNotFullyPaid      = errors.New("not_fully_paid")
)

// ValidationError carries field-level violations.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrValidation, map[string]string(e.Violations))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFullyPaidError carries the balance still owed.
type NotFullyPaidError struct {
	Outstanding decimal.Decimal
}

func (e *NotFullyPaidError) Error() string {
	return fmt.Sprintf("%s: outstanding %s", ErrNotFullyPaid, e.Outstanding.StringFixed(2))
}

func (e *NotFullyPaidError) Unwrap() error { return ErrNotFullyPaid }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

// lookupErr maps gorm's missing-record error to ErrNotFound.
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}
