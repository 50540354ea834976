// Package apperror defines the application's error taxonomy.
//
// Lower layers return one of the sentinel errors below wrapped in an *AppError.
// The handler package maps them to HTTP status codes; anything that is not an
// *AppError is treated as a storage failure and reported as a generic 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrTooLarge   = errors.New("too large")
)

type AppError struct {
	Err     error  // sentinel, one of the Err* values above
	Message string // human-readable, safe to send to clients
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// TooLarge reports a request payload over the configured limit.
// HTTP handlers map this to 413 Request Entity Too Large.
func TooLarge(message string) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: message,
	}
}
