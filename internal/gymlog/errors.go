package gymlog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a workout does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when a call is made without an authenticated user.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a payload that failed shape or range checks.
// It is always returned before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// StoreError wraps a persistence failure. Partial writes are rolled back
// before it is returned.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Err: err,
	}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
