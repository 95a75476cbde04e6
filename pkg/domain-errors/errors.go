// Package dErrors provides code-carrying domain errors.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these at the boundary, and the HTTP layer translates codes into statuses
// in exactly one place (pkg/platform/httputil). Codes classify the failure
// for the caller; messages are safe to surface except for CodeInternal.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and caller branching.
type Code string

const (
	// CodeUnauthorized covers missing or unresolvable caller identity,
	// including an absent or unknown account context. Never defaulted.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden: identity is known but not allowed to act.
	CodeForbidden Code = "forbidden"
	// CodeNotFound: entity absent, or present but outside the caller's
	// account. The two cases are deliberately indistinguishable.
	CodeNotFound Code = "not_found"
	// CodeConflict: write conflicts with current state (duplicate name).
	CodeConflict Code = "conflict"
	// CodeContention: transient lock/transaction conflict. Safe to retry
	// with backoff; distinct from CodeInvariantViolation.
	CodeContention Code = "contention"
	// CodeValidation: request shape or cross-field rules failed.
	CodeValidation Code = "validation_failed"
	// CodeInvalidInput: a single field is malformed (bad UUID, bad range).
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation: a domain invariant would be broken by the
	// mutation. Recoverable by adjusting the request; never auto-retried.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeBadRequest: unparseable request body.
	CodeBadRequest Code = "bad_request"
	// CodeInternal: unexpected failure; details are logged, not surfaced.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a classification code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with a code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the cause chain.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode for call sites that read better with it.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the code carried by err, or CodeInternal if none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the message carried by err, or empty if none.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
