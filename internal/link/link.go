// Package link validates user-supplied URLs before they are stored.
//
// WHY A SCHEME ALLOW-LIST?
// Links are rendered as anchors in the browser. A stored "javascript:" or
// "data:" URL would execute when clicked, so only http and https are accepted.
// This is the single copy of the rule: the write path and the advisory
// pre-check endpoint both call Validate.
package link

import (
	"net/url"
	"strings"

	"github.com/sakif/shelf/internal/apperror"
)

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// Validate trims raw and checks that it is an absolute http(s) URL.
//
// It returns the trimmed input unchanged (no normalisation of query or
// fragment). Failures are *apperror.AppError values wrapping
// apperror.ErrMalformedURL or apperror.ErrDisallowedScheme.
//
// url.Parse lower-cases the scheme, so "HTTPS://x" is accepted and a
// rejected scheme is reported in lower case.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperror.MalformedURL()
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" {
		return "", apperror.MalformedURL()
	}

	if !allowedSchemes[u.Scheme] {
		return "", apperror.DisallowedScheme(u.Scheme)
	}

	// "http:foo" parses with an opaque part and no host.
	if u.Host == "" {
		return "", apperror.MalformedURL()
	}

	return trimmed, nil
}
