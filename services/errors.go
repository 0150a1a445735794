package services

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrValidation         = errors.New("validation failed")
	ErrTotalMismatch      = errors.New("order total does not match cart")
	ErrUnavailable        = errors.New("service not configured")
	ErrUpstream           = errors.New("upstream service error")

	ErrIdempotencyKeyReused = errors.New("idempotency key already used for another order")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
