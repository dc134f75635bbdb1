package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed client error with HTTP awareness. Status carries the
// upstream HTTP status when the error originated from an API response, or a
// best-fit status for locally raised errors.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by error code so sentinel comparisons survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "not signed in")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrUnavailable        = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "service unavailable, try again later")
	ErrNetwork            = New("NETWORK_ERROR", 0, "could not reach the server")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "something went wrong")

	ErrFileTooLarge   = New("FILE_TOO_LARGE", http.StatusBadRequest, "file exceeds the size limit")
	ErrFileType       = New("FILE_TYPE_NOT_ALLOWED", http.StatusBadRequest, "file type is not allowed")
	ErrSubmitInFlight = New("SUBMIT_IN_FLIGHT", http.StatusConflict, "a submission is already in progress")
	ErrMutationBusy   = New("MUTATION_IN_FLIGHT", http.StatusConflict, "another change to this record is still pending")
	ErrStaleRecord    = New("STALE_RECORD", http.StatusConflict, "record was changed elsewhere, reload and retry")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// FromStatus maps an HTTP response status to a typed error, preferring the
// server's own message when one was parsed out of the body.
func FromStatus(status int, serverMessage string) *Error {
	var base *Error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusConflict:
		base = ErrConflict
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		base = ErrValidation
	case status >= 500:
		base = ErrUnavailable
	default:
		base = ErrInternal
	}
	e := Clone(base, serverMessage)
	e.Status = status
	return e
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
