// Package errors defines the typed application error used across the
// service (AppError, wrapping a sentinel) and the HTTP status mapping the
// adapter uses to translate any error into a response code.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyQuery indicates a search request with no usable query terms.
	// It is not treated as a failure: the adapter still responds 200 with
	// an empty result set.
	ErrEmptyQuery = errors.New("empty query")
	// ErrDiscoveryFailed indicates the C3 discovery stage could not
	// retrieve any search results (after retry) for a live query.
	ErrDiscoveryFailed = errors.New("discovery failed")
	// ErrIndexClosed indicates an operation was attempted against a
	// process-lifetime index that has already been closed.
	ErrIndexClosed = errors.New("index closed")
	// ErrInvalidInput indicates a malformed request parameter (e.g. a
	// non-numeric topN or an unrecognized mode).
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited indicates the per-IP rate limiter rejected a request.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrInternal is a catch-all for unexpected internal failures.
	ErrInternal = errors.New("internal error")
)

// AppError pairs a sentinel error with a human-readable message and an
// explicit HTTP status code, allowing call sites to override the default
// sentinel-based mapping when a more specific code applies.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the status code this AppError was constructed
// with.
func (e *AppError) HTTPStatusCode() int {
	return e.StatusCode
}

// New wraps sentinel in an AppError with an explicit status code and
// message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

// Newf is New with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}

// HTTPStatusCode maps any error to an HTTP status code. An *AppError
// reports its own StatusCode; otherwise the sentinel (or, failing that,
// context.Canceled) is matched against the ambient mapping, defaulting to
// 500 for anything unrecognized.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatusCode()
	}

	switch {
	case errors.Is(err, ErrEmptyQuery):
		return http.StatusOK
	case errors.Is(err, ErrDiscoveryFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrIndexClosed):
		return http.StatusInternalServerError
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled):
		// The client closed the request before the server could finish.
		// There is no standard HTTP status for this; nginx's convention
		// (499) is adopted for log clarity without alerting.
		return 499
	default:
		return http.StatusInternalServerError
	}
}
