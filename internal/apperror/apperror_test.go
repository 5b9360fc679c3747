package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("recommendation", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "Title is required."),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated(),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "UserNotSynced wraps ErrUserNotSynced",
			err:       UserNotSynced(),
			target:    ErrUserNotSynced,
			wantMatch: true,
		},
		{
			name:      "InvalidGenre is a validation error",
			err:       InvalidGenre("polka"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "InvalidGenre matches its own sentinel",
			err:       InvalidGenre("polka"),
			target:    ErrInvalidGenre,
			wantMatch: true,
		},
		{
			name:      "MalformedURL is a validation error",
			err:       MalformedURL(),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "DisallowedScheme is a validation error",
			err:       DisallowedScheme("ftp"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "DisallowedScheme is not MalformedURL",
			err:       DisallowedScheme("ftp"),
			target:    ErrMalformedURL,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("recommendation", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped Forbidden still matches",
			err:       fmt.Errorf("removing: %w", Forbidden("nope")),
			target:    ErrForbidden,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("recommendation", "abc123"),
			wantMessage: "recommendation not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "Title is required."),
			wantMessage: "Title is required.",
		},
		{
			name:        "InvalidGenre quotes the value",
			err:         InvalidGenre("polka"),
			wantMessage: `Invalid genre: "polka".`,
		},
		{
			name:        "MalformedURL",
			err:         MalformedURL(),
			wantMessage: "Invalid URL. Make sure it starts with https:// or http://",
		},
		{
			name:        "DisallowedScheme echoes scheme with colon",
			err:         DisallowedScheme("javascript"),
			wantMessage: `URLs must use http or https. Received: "javascript:"`,
		},
		{
			name:        "Unauthenticated",
			err:         Unauthenticated(),
			wantMessage: "Unauthenticated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("recommendation", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestFieldIsSet(t *testing.T) {
	tests := []struct {
		err   *AppError
		field string
	}{
		{ValidationFailed("blurb", "Blurb is required."), "blurb"},
		{InvalidGenre("x"), "genre"},
		{MalformedURL(), "link"},
		{DisallowedScheme("ftp"), "link"},
	}
	for _, tt := range tests {
		if tt.err.Field != tt.field {
			t.Errorf("Field = %q, want %q", tt.err.Field, tt.field)
		}
	}
}
