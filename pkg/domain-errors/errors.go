// Package domainerrors defines the coded error type used across the domain.
//
// Services and models return these so transport layers can translate them
// into HTTP responses without inspecting error strings. Infrastructure facts
// (not found, conflict) start as pkg/platform/sentinel errors and are
// translated into coded errors at the service layer.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification surfaced verbatim to
// callers.
type Code string

const (
	// CodeValidation marks malformed request payloads outside the principal.
	// Carries a flattened field report when produced via WithFields.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeInvalidInput marks a single malformed value at a trust boundary
	// (bad UUID, unknown enum member).
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeAuthPrincipalInvalid marks a principal payload that failed strict
	// shape validation. Such a request never reaches authorization logic.
	CodeAuthPrincipalInvalid Code = "AUTH_PRINCIPAL_INVALID"

	// CodeUnauthenticated marks requests with no principal present.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// CodeForbidden marks a present principal lacking rank or ownership.
	CodeForbidden Code = "FORBIDDEN"

	// CodeIllegalTransition marks a status transition not defined for the
	// (source status, actor role) pair.
	CodeIllegalTransition Code = "ILLEGAL_TRANSITION"

	// CodeSubmissionIncomplete marks a submit attempt with unfulfilled
	// mandatory requirements. Carries the missing template list in Fields.
	CodeSubmissionIncomplete Code = "SUBMISSION_INCOMPLETE"

	// CodeConflict marks an optimistic precondition failure; the only code a
	// well-behaved caller retries (after re-reading state).
	CodeConflict Code = "CONFLICT"

	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInvariantViolation marks a domain invariant breach detected by a
	// model constructor or transition guard.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeInternal marks unexpected infrastructure failures. Details are
	// logged, never surfaced.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a stable code, a human-readable message, and
// an optional flattened field->messages report.
type Error struct {
	Code    Code
	Message string
	Fields  map[string][]string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a domain code and message. The
// original error stays reachable via errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// WithFields attaches a flattened field->messages report, returning the
// receiver for chaining.
func (e *Error) WithFields(fields map[string][]string) *Error {
	e.Fields = fields
	return e
}

// AddFieldViolation appends one violation message under a field path,
// allocating the report on first use.
func (e *Error) AddFieldViolation(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// GetCode extracts the domain code from err, or CodeInternal when err is not
// a domain error.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts the flattened field report from err, or nil.
func FieldsOf(err error) map[string][]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
