// Package fault carries the engine-level error taxonomy. Every precondition
// violation is a synchronous rejection with one of these codes and a
// human-readable message callers can surface directly.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an engine rejection.
type Code string

const (
	// CodeNotFound: the referenced entity does not exist, or does not belong
	// to the caller (ownership checks fold into not-found so that existence
	// is not leaked).
	CodeNotFound Code = "NOT_FOUND"
	// CodeForbidden: role-based authorization failure or ownership mismatch
	// where existence is already known (e.g. vehicle at accept time).
	CodeForbidden Code = "FORBIDDEN"
	// CodeConflict: state-machine violation, one-active-ride violation,
	// shared ride full, or joining a ride that already started.
	CodeConflict Code = "CONFLICT"
	// CodeValidation: malformed input, rejected before touching the store.
	CodeValidation Code = "VALIDATION"
	// CodeInternal: store unavailable or unexpected persistence failure.
	// Surfaced to callers as an opaque failure, never retried by the core.
	CodeInternal Code = "INTERNAL"
)

// Error is a classified engine error.
type Error struct {
	Code    Code
	Message string
	Err     error // wrapped cause, set for INTERNAL
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a NOT_FOUND rejection.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a FORBIDDEN rejection.
func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a CONFLICT rejection.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds a VALIDATION rejection.
func Invalid(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The caller-facing message stays
// opaque; the cause is preserved for logs.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf extracts the taxonomy code from err, defaulting to INTERNAL for
// unclassified errors.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from err.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal error"
}

// HTTPStatus maps a taxonomy code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
