// Package errs defines the error kinds surfaced by the query and write paths.
package errs

import "fmt"

// ValidationError marks malformed caller input. It maps to a 400 response and
// is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError marks a storage failure. It maps to a 500 response on the query
// and write paths; on the ingestion path it is logged and the message dropped.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// AuthorizationError marks an insufficient caller role. It maps to a 403.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }
