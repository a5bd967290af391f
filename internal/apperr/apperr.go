// Package apperr defines the error categories surfaced by CivicDesk
// operations. Handlers map a Kind to an HTTP status; services never write
// responses themselves.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-distinguishable category of a failure.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindRateLimited     Kind = "rate_limited"
	KindDependency      Kind = "dependency"
)

// Error is a categorized failure with a user-facing message. Err carries
// operator-side detail and is never written to the client.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode returns a copy of e carrying a finer-grained machine code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthenticated(message string) *Error { return newError(KindUnauthenticated, message) }
func Forbidden(message string) *Error       { return newError(KindForbidden, message) }
func Validation(message string) *Error      { return newError(KindValidation, message) }
func NotFound(message string) *Error        { return newError(KindNotFound, message) }
func Conflict(message string) *Error        { return newError(KindConflict, message) }
func RateLimited(message string) *Error     { return newError(KindRateLimited, message) }

// Dependency wraps a storage, object-storage or mail failure.
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// KindOf reports the category of err. Errors that were never categorized
// are treated as dependency failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// CodeOf returns the machine code attached to err, if any.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// As extracts the categorized error, converting anything else into a
// generic dependency failure.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Dependency("Internal server error.", err)
}

// HTTPStatus maps a Kind to the response status handlers send.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Body is the JSON error envelope.
type Body struct {
	Error    string `json:"error"`
	Category Kind   `json:"category"`
	Code     string `json:"code,omitempty"`
}

// Body returns the client-facing envelope. Operator detail in Err is left out.
func (e *Error) Body() Body {
	return Body{Error: e.Message, Category: e.Kind, Code: e.Code}
}
