// Package apperr defines the error taxonomy shared by every layer of the API.
//
// Services return *Error values; the central responder in package web turns
// them into HTTP statuses and {success:false, error} bodies. Anything that is
// not an *Error reaching the responder is treated as an upstream failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
	KindThrottled  Kind = "throttled"
)

// Error is a classified failure with the message shown to clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed, missing or duplicate input (400).
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports a missing or invalid identity (401).
func Unauthenticated(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an authenticated caller lacking permission (403).
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a well-formed lookup with no matching document (404).
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure of the store, geocoder or mail sender (500).
func Upstream(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Status: http.StatusInternalServerError, Message: fmt.Sprintf(format, args...), Err: err}
}

// Throttled reports a client over its request budget (429).
func Throttled(format string, args ...any) *Error {
	return &Error{Kind: KindThrottled, Status: http.StatusTooManyRequests, Message: fmt.Sprintf(format, args...)}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// StatusOf returns the HTTP status for err, 500 when it is unclassified.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
