package trading

import (
	"errors"
	"fmt"
)

// Error kinds used across the position engine, the PnL reporter and the
// HTTP handlers. Handlers map them to status codes; everything below the
// handlers only ever deals in these types.

// ValidationError rejects a request before any state change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a printf-style message.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals an unknown record id.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ProviderError wraps a quote provider failure. Callers recover from it
// locally; it never aborts a whole report.
type ProviderError struct {
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("quote provider failed for %s: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a store write failure. It is surfaced to the
// caller, not retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
