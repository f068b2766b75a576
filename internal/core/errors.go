package core

import (
	"errors"
	"time"
)

// DefaultValidationTTL is how long a ValidationError notice stays visible.
const DefaultValidationTTL = 25 * time.Second

// genericFailure is all the actor ever sees of an unexpected handler failure.
const genericFailure = "There was an error trying to execute that command!"

var (
	// ErrUnknownValidation is logged when an action names a validation nobody registered.
	ErrUnknownValidation = errors.New("custom validation is not registered")
	// ErrDuplicate is returned when a name, alias or key is already registered.
	ErrDuplicate = errors.New("already registered")
	// ErrInvalidAction is returned for actions missing a name, matcher or Run.
	ErrInvalidAction = errors.New("invalid action")
)

// ValidationError is returned by a handler to show the actor a
// self-deleting notice instead of the generic failure message.
type ValidationError struct {
	Message string
	TTL     time.Duration
}

// NewValidationError returns a ValidationError with the default TTL.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg, TTL: DefaultValidationTTL}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) ttl() time.Duration {
	if e.TTL <= 0 {
		return DefaultValidationTTL
	}
	return e.TTL
}
