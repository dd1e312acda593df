package core

import (
	"errors"
	"fmt"
)

// Validation errors are permanent for a given input: the caller must
// change the input, not retry. They all match ErrValidation via errors.Is.
var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrNegativeAmount   = fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrUnknownCategory  = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrUnknownStatus    = fmt.Errorf("%w: unknown status", ErrValidation)
	ErrUnknownRole      = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrZeroDate         = fmt.Errorf("%w: date cannot be zero", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", ErrValidation)
)

var (
	// ErrNotAuthorized is a trust-boundary denial. It is always surfaced
	// as-is, never downgraded to a generic error.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound means the referenced claim id does not exist.
	ErrNotFound = errors.New("expense not found")

	// ErrInvalidTransition means the claim is no longer pending. Repeat
	// approvals and rejections fail with this rather than succeeding
	// silently, so a claim cannot be processed twice.
	ErrInvalidTransition = errors.New("expense is not pending")
)
