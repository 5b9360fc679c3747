package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "invalid_genre", "message": "Invalid genre: \"Action\".", "field": "genre"}
//
// "field" is only present when the error is about one input, so a form can
// put the message next to the right control.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/shelf/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Input the error refers to, if any
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code go out BEFORE the body. Once Encode writes,
// any header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorMapping pairs a sentinel with its HTTP status and machine code.
//
// ORDER MATTERS:
// errors.Is walks the whole chain, and the three link/genre sentinels wrap
// ErrValidation. They must be checked before their parent or every bad
// link would come out as a plain "validation_error".
var errorMappings = []struct {
	sentinel error
	status   int
	code     string
}{
	{apperror.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperror.ErrUserNotSynced, http.StatusConflict, "user_not_synced"},
	{apperror.ErrInvalidGenre, http.StatusBadRequest, "invalid_genre"},
	{apperror.ErrMalformedURL, http.StatusBadRequest, "malformed_url"},
	{apperror.ErrDisallowedScheme, http.StatusBadRequest, "disallowed_scheme"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer should not know about HTTP status codes. The websocket
// feed and the JSON API share services but report failures differently.
//
// errors.As UNWRAPPING:
//
//	service returns: fmt.Errorf("add recommendation: %w", apperror.InvalidGenre(...))
//	which wraps:     AppError{Err: ErrInvalidGenre, ...}
//	which wraps:     ErrValidation
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorMappings {
			if errors.Is(err, m.sentinel) {
				writeJSON(w, m.status, ErrorResponse{
					Error:   m.code,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	// Unknown error: never expose internal details (SQL, file paths) to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
