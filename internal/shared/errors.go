package shared

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-checkable classification carried by every
// user-visible failure.
type ErrorKind string

const (
	// KindInvalidInput flags malformed or out-of-range request fields.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindDuplicateName flags a catalog uniqueness violation.
	KindDuplicateName ErrorKind = "duplicate_name"
	// KindUnknownMaterial flags a dangling material reference at transaction time.
	KindUnknownMaterial ErrorKind = "unknown_material"
	// KindInvalidTransaction flags a sign-convention or zero-quantity violation.
	KindInvalidTransaction ErrorKind = "invalid_transaction"
	// KindForbidden flags an illegal operation on a global/shared resource.
	KindForbidden ErrorKind = "forbidden"
	// KindNotFound flags a missing id or an ownership mismatch.
	KindNotFound ErrorKind = "not_found"
	// KindUnauthorized flags a missing or expired credential.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindStorage flags an underlying store failure, surfaced as-is.
	KindStorage ErrorKind = "storage_unavailable"
)

// Error pairs an ErrorKind with a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError builds an Error without a wrapped cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an Error that keeps its cause for errors.Is/As chains.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or empty string when err carries none.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// MessageOf returns the user-safe message from err, or a generic fallback.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
