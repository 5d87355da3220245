package engine

import (
	"errors"
	"fmt"
)

// ErrRequiredField and related sentinels classify engine failures. Typed
// errors below wrap them so callers can branch with errors.Is while results
// keep the specific field or count context.
var (
	ErrDecode               = errors.New("undecodable parameters")
	ErrRequiredField        = errors.New("required field missing")
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrRange                = errors.New("value out of range")
	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrUnsupportedAction    = errors.New("unsupported action")
	ErrPersistence          = errors.New("persistence failure")
)

// FieldError reports a decode or validation failure tied to one field.
type FieldError struct {
	Field  string
	Kind   error
	Detail string
}

// Error renders the field failure.
func (e *FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

// Unwrap exposes the sentinel classifying this failure.
func (e *FieldError) Unwrap() error { return e.Kind }

// ConfirmationError reports a destructive guard rejection with the count of
// entities the operation would have touched.
type ConfirmationError struct {
	Matched int
}

// Error renders the guard rejection.
func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("confirmation required: operation affects %d item(s)", e.Matched)
}

// Unwrap exposes the confirmation sentinel.
func (e *ConfirmationError) Unwrap() error { return ErrConfirmationRequired }

// UnsupportedError reports an unknown entity/action pair.
type UnsupportedError struct {
	Entity string
	Action string
}

// Error renders the unsupported pair.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported action %q for entity %q", e.Action, e.Entity)
}

// Unwrap exposes the unsupported-action sentinel.
func (e *UnsupportedError) Unwrap() error { return ErrUnsupportedAction }

// PersistenceError reports a store-level failure with its original cause
// preserved for diagnostics.
type PersistenceError struct {
	Op    string
	Cause error
}

// Error renders the store failure.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Cause)
}

// Unwrap exposes both the persistence sentinel and the original cause.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Cause} }

// decodeErr builds a FieldError classified as a decode failure.
func decodeErr(field, detail string) error {
	return &FieldError{Field: field, Kind: ErrDecode, Detail: detail}
}

// storeErr classifies a store failure unless it is already engine-typed.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Cause: err}
}
