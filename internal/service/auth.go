package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/shelf/internal/auth"
)

// AuthService turns a completed GitHub login into a session token.
//
//	AuthHandler (HTTP) → AuthService → TokenService (JWT)
//
// WHAT THIS SERVICE DOES NOT DO:
// It does not touch the User Directory. The token carries the verified
// identity and profile claims; the client reads them back from
// /auth/session and calls /api/users/sync itself. Until it does, reads
// work and writes answer "user not synced".
type AuthService struct {
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the identity and the JWT issued for it, so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	Identity auth.Identity
	Token    string
}

// LoginGitHub issues a token for the GitHub profile returned by the
// OAuth callback.
func (s *AuthService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	identity := ghUser.Identity()
	token, err := s.tokens.Generate(identity)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", identity.Subject, err)
	}

	s.logger.InfoContext(ctx, "user authenticated via GitHub",
		slog.String("subject", identity.Subject),
		slog.String("login", ghUser.Login),
	)

	return &AuthResult{Identity: identity, Token: token}, nil
}

// TokenTTL is how long issued tokens stay valid. The session cookie
// expires at the same time.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// ValidateToken returns the identity a token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (auth.Identity, error) {
	identity, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("service/auth: %w", err)
	}
	return identity, nil
}
