package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrPasswordMissMatch     = errors.New("password mismatch")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrIncompleteBankDetails = errors.New("bank details are incomplete")
)

// BelowMinimumError rejects a withdrawal request under the configured
// platform minimum.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum withdrawal amount is %s", e.Minimum.String())
}

// InvalidStateError is returned when an operation targets an entity in a
// state the operation does not accept, e.g. reviewing an already reviewed
// withdrawal or purchasing an unapproved project.
type InvalidStateError struct {
	Entity  string
	Current string
	Reason  string
}

func NewInvalidStateError(entity, current, reason string) error {
	return &InvalidStateError{Entity: entity, Current: current, Reason: reason}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s in status %s: %s", e.Entity, e.Current, e.Reason)
}
