package service

import (
	"errors"
	"fmt"
)

// Category roots. Handlers map errors to responses with errors.Is against
// these; the members below wrap them.
var (
	ErrValidation = errors.New("invalid request")
	ErrConflict   = errors.New("already exists")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrInvalidMFACode     = fmt.Errorf("%w: invalid or expired mfa code", ErrAuth)
	ErrInvalidResetToken  = fmt.Errorf("%w: reset token is invalid or has expired", ErrAuth)

	ErrPendingApproval   = errors.New("account is pending approval")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrThrottled         = errors.New("too many requests")

	ErrMFANotEnrolled    = fmt.Errorf("%w: mfa is not enrolled", ErrValidation)
	ErrMFANotEnabled     = fmt.Errorf("%w: mfa is not enabled", ErrValidation)
	ErrMFAAlreadyEnabled = fmt.Errorf("%w: mfa is already enabled", ErrConflict)

	ErrAccountNumberExhausted = errors.New("account number space exhausted")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ExhaustedError is returned when no free account number was found within
// the retry budget.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no unused account number after %d attempts", e.Attempts)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrAccountNumberExhausted }

// storageErr tags an unexpected store failure.
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
