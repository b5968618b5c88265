// Package errors provides structured error types for collage.
//
// Every error that crosses a package boundary carries a machine-readable
// [Code], so the CLI, the TUI and the HTTP API can react to failures without
// string matching:
//   - INVALID_*: input validation failures (queries, photo records, config)
//   - *_NOT_FOUND: missing resources
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED, UNAUTHORIZED: provider failures
//   - FETCH_FAILURE: any search failure as seen by the session controller
//   - VIEWPORT_UNAVAILABLE, UNFITTABLE_TILE: layout outcomes
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidQuery, "query too long (%d chars)", n)
//	if errors.Is(err, errors.ErrCodeInvalidQuery) {
//	    // reject input
//	}
//
//	err = errors.Wrap(errors.ErrCodeFetchFailure, cause, "search %q", query)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidQuery  Code = "INVALID_QUERY"
	ErrCodeInvalidPhoto  Code = "INVALID_PHOTO"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Provider errors
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeFetchFailure Code = "FETCH_FAILURE"

	// Layout outcomes
	ErrCodeViewportUnavailable Code = "VIEWPORT_UNAVAILABLE"
	ErrCodeUnfittableTile      Code = "UNFITTABLE_TILE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code used by the HTTP API.
func HTTPStatus(err error) int {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests
	}
	switch {
	case Is(err, ErrCodeInvalidPhoto):
		return http.StatusBadGateway
	case Is(err, ErrCodeInvalidInput), Is(err, ErrCodeInvalidQuery):
		return http.StatusBadRequest
	case Is(err, ErrCodeNotFound), Is(err, ErrCodeSessionNotFound):
		return http.StatusNotFound
	case Is(err, ErrCodeRateLimited):
		return http.StatusTooManyRequests
	case Is(err, ErrCodeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
