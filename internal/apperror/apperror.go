// Package apperror defines the error taxonomy shared by every layer.
//
// ERROR SHAPE:
// Services return *AppError values. Each one wraps a sentinel (ErrNotFound,
// ErrForbidden, ...) so callers can branch with errors.Is while the
// Message stays human-readable. The HTTP layer maps sentinels to status codes.
//
// NESTED SENTINELS:
// ErrInvalidGenre, ErrMalformedURL and ErrDisallowedScheme wrap ErrValidation,
// so errors.Is(err, ErrValidation) is true for all three. Handlers that only
// care about "bad input" can check the parent, and tests can check the leaf.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotSynced   = errors.New("user not synced")

	ErrInvalidGenre     = fmt.Errorf("invalid genre: %w", ErrValidation)
	ErrMalformedURL     = fmt.Errorf("malformed url: %w", ErrValidation)
	ErrDisallowedScheme = fmt.Errorf("disallowed scheme: %w", ErrValidation)
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
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

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated is returned when an operation needs a verified identity
// and the context carries none.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "Unauthenticated",
	}
}

// UserNotSynced means the identity is valid but no User Directory record
// exists for it yet. Clients recover by calling the sync endpoint.
func UserNotSynced() *AppError {
	return &AppError{
		Err:     ErrUserNotSynced,
		Message: "User record not found. Please refresh and try again.",
	}
}

func InvalidGenre(value string) *AppError {
	return &AppError{
		Err:     ErrInvalidGenre,
		Message: fmt.Sprintf("Invalid genre: %q.", value),
		Field:   "genre",
	}
}

func MalformedURL() *AppError {
	return &AppError{
		Err:     ErrMalformedURL,
		Message: "Invalid URL. Make sure it starts with https:// or http://",
		Field:   "link",
	}
}

// DisallowedScheme reports a well-formed URL whose scheme is not http(s).
// scheme is echoed with a trailing colon, e.g. "javascript:".
func DisallowedScheme(scheme string) *AppError {
	return &AppError{
		Err:     ErrDisallowedScheme,
		Message: fmt.Sprintf("URLs must use http or https. Received: %q", scheme+":"),
		Field:   "link",
	}
}
