package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/shelf/internal/auth"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuthService uses a short-lived token service with a fixed secret,
// suitable for tests only.
func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", "shelf-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(ts, discardLogger())
}

// =========================================================================
// LoginGitHub TESTS
// =========================================================================

func TestLoginGitHub_IssuesTokenForIdentity(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.LoginGitHub(context.Background(), &auth.GitHubUser{
		ID:        42,
		Login:     "octocat",
		Email:     "octocat@github.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/42",
	})
	if err != nil {
		t.Fatalf("LoginGitHub() error = %v", err)
	}

	if result.Token == "" {
		t.Fatal("LoginGitHub() returned empty Token")
	}
	if result.Identity.Subject != "github|42" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "github|42")
	}
	if result.Identity.Name != "octocat" {
		t.Errorf("Name = %q, want login fallback %q", result.Identity.Name, "octocat")
	}
}

func TestLoginGitHub_TokenRoundTrips(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.LoginGitHub(context.Background(), &auth.GitHubUser{
		ID: 7, Login: "tok", Name: "Tok Tokerson", Email: "tok@example.com",
	})
	if err != nil {
		t.Fatalf("LoginGitHub() error = %v", err)
	}

	got, err := svc.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if got != result.Identity {
		t.Errorf("ValidateToken() = %+v, want %+v", got, result.Identity)
	}
}

func TestLoginGitHub_NilGitHubUser(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.LoginGitHub(context.Background(), nil); err == nil {
		t.Fatal("LoginGitHub() should return error for nil GitHubUser")
	}
}

// =========================================================================
// ValidateToken TESTS
// =========================================================================

func TestValidateToken_InvalidToken(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.ValidateToken("this.is.garbage"); err == nil {
		t.Fatal("ValidateToken() should return error for garbage token")
	}
}
