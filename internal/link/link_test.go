package link

import (
	"errors"
	"testing"

	"github.com/sakif/shelf/internal/apperror"
)

// =========================================================================
// ACCEPTED URLS
// =========================================================================

func TestValidate_Accepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"https", "https://letterboxd.com/film/dune-part-two/", "https://letterboxd.com/film/dune-part-two/"},
		{"http", "http://example.com/page", "http://example.com/page"},
		{"trims whitespace", "  https://example.com  ", "https://example.com"},
		{"keeps query and fragment", "https://example.com/search?q=dune&page=2#results", "https://example.com/search?q=dune&page=2#results"},
		{"upper-case scheme", "HTTPS://example.com", "HTTPS://example.com"},
		{"port and userinfo", "http://user@example.com:8080/x", "http://user@example.com:8080/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.raw)
			if err != nil {
				t.Fatalf("Validate(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	first, err := Validate("  https://example.com/a?b=c  ")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	second, err := Validate(first)
	if err != nil {
		t.Fatalf("Validate() second pass error = %v", err)
	}
	if first != second {
		t.Errorf("second pass = %q, want %q", second, first)
	}
}

// =========================================================================
// REJECTED URLS
// =========================================================================

func TestValidate_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not-a-url",
		"www.example.com",
		"/relative/path",
		"http://",
		// A host is required: no "//" means no authority.
		"http:foo",
		"https:/x.com",
		"https:example.com",
		"http://[::1",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			_, err := Validate(raw)
			if !errors.Is(err, apperror.ErrMalformedURL) {
				t.Fatalf("Validate(%q) error = %v, want ErrMalformedURL", raw, err)
			}
			if got := err.Error(); got != "Invalid URL. Make sure it starts with https:// or http://" {
				t.Errorf("message = %q", got)
			}
		})
	}
}

func TestValidate_DisallowedScheme(t *testing.T) {
	tests := []struct {
		raw     string
		message string
	}{
		{"javascript:alert('xss')", `URLs must use http or https. Received: "javascript:"`},
		{"data:text/html,<h1>hi</h1>", `URLs must use http or https. Received: "data:"`},
		{"ftp://files.example.com", `URLs must use http or https. Received: "ftp:"`},
		{"mailto:someone@example.com", `URLs must use http or https. Received: "mailto:"`},
		{"JavaScript:alert(1)", `URLs must use http or https. Received: "javascript:"`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Validate(tt.raw)
			if !errors.Is(err, apperror.ErrDisallowedScheme) {
				t.Fatalf("Validate(%q) error = %v, want ErrDisallowedScheme", tt.raw, err)
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error should also match ErrValidation")
			}
			if got := err.Error(); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
		})
	}
}
