// Package flowerrors provides the structured error taxonomy for the
// visualization state core.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the state API, engine, and bridges
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the taxonomy of the visualization state core: input
// validation, illegal state transitions, hierarchy violations, internal
// consistency failures, and external layout failures.
//
// # Usage
//
//	err := flowerrors.New(flowerrors.InvalidInput, "node id must not be empty")
//	if flowerrors.Is(err, flowerrors.InvalidState) {
//	    // handle illegal state transition
//	}
//
//	// Wrap an existing error
//	err := flowerrors.Wrap(flowerrors.LayoutFailure, origErr, "layout engine %q failed", name)
package flowerrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Error codes, one per spec.md §7 taxonomy entry, plus InternalError for
// ambient failures that are not part of that taxonomy (e.g. cache I/O).
const (
	// InvalidInput covers missing required fields, empty ids, unknown style
	// values, and malformed child sets. The state is left unchanged.
	InvalidInput Code = "INVALID_INPUT"

	// InvalidState covers API calls that are not meaningful in the current
	// state: expand on a non-collapsed container, collapse on an
	// already-collapsed container, remove of an unknown id. The state is
	// left unchanged.
	InvalidState Code = "INVALID_STATE"

	// HierarchyCycle is returned by add_child when the new parent/child
	// relationship would introduce a cycle.
	HierarchyCycle Code = "HIERARCHY_CYCLE"

	// AlreadyParented is returned by add_child when the child already has a
	// different parent.
	AlreadyParented Code = "ALREADY_PARENTED"

	// InvariantViolation indicates an internal consistency check failed at
	// the end of an engine step. This is a programmer bug: the engine rolls
	// back to the pre-step state and surfaces a diagnostic. It must never
	// occur in a correct implementation.
	InvariantViolation Code = "INVARIANT_VIOLATION"

	// LayoutFailure indicates the external layout engine returned an error
	// or produced output that fails shape validation.
	LayoutFailure Code = "LAYOUT_FAILURE"

	// InternalError covers ambient failures outside the spec.md taxonomy
	// (cache I/O, serialization, transport).
	InternalError Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error

	// Diagnostic carries additional structured detail for InvariantViolation
	// errors — a snapshot of the state the engine observed when the
	// invariant check failed. Nil for all other codes.
	Diagnostic map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithDiagnostic attaches a diagnostic snapshot to an InvariantViolation
// error and returns the same error for chaining.
func (e *Error) WithDiagnostic(d map[string]any) *Error {
	e.Diagnostic = d
	return e
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, or "" if not a *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error, stripping the
// code prefix for *Error types.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
