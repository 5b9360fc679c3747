package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is what a verified token tells us about the caller.
//
// Subject is the identity provider's stable id ("github|1234567") and is the
// User Directory's natural key. The profile fields are whatever the provider
// reported at login and may be empty.
type Identity struct {
	Subject   string `json:"subject"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// contextKey is an unexported type so no other package can read or shadow
// our context values.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id. The middleware uses it
// after verifying a token; tests use it to act as a signed-in caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller's identity.
// Returns (Identity{}, false) for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Subject != ""
}

// RequireAuth rejects requests without a valid token with 401.
//
// Most routes use OptionalAuth instead and let the service decide, because
// the services own the Unauthenticated error. RequireAuth guards routes
// that have no service behind them, like the session endpoint.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"Unauthenticated"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through as anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := extractIdentity(r, tokens); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIdentity reads the token from "Authorization: Bearer <jwt>" or,
// failing that, from the "token" cookie set at login. Browsers send the
// cookie; API clients and websocket dialers usually send the header.
func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tokens.Validate(strings.TrimSpace(raw))
		}
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}

// TokenCookie is the name of the HttpOnly cookie holding the JWT.
const TokenCookie = "token"
