package config

import (
	"reflect"
	"testing"
	"time"
)

// setRequired sets the minimum environment Load needs to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/shelf.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.JWTIssuer != "shelf" {
		t.Errorf("JWTIssuer = %q", cfg.JWTIssuer)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.GitHubCallbackURL != "http://localhost:8080/auth/github/callback" {
		t.Errorf("GitHubCallbackURL = %q", cfg.GitHubCallbackURL)
	}
	if cfg.GitHubEnabled() {
		t.Error("GitHub should be disabled without credentials")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GITHUB_CLIENT_ID", "id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.TokenTTL != 15*time.Minute || cfg.LogFormat != "json" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.GitHubEnabled() {
		t.Error("GitHub should be enabled")
	}
	if cfg.GitHubCallbackURL != "http://localhost:9090/auth/github/callback" {
		t.Errorf("GitHubCallbackURL = %q", cfg.GitHubCallbackURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad port", map[string]string{"PORT": "70000"}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"half github config", map[string]string{"GITHUB_CLIENT_ID": "only-id"}},
		{"zero ttl", map[string]string{"TOKEN_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestSplitEmails(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a@x.com", []string{"a@x.com"}},
		{" A@X.com , b@y.org,,  ", []string{"a@x.com", "b@y.org"}},
	}
	for _, tt := range tests {
		if got := SplitEmails(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitEmails(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestAdminEmailsFromEnv_ReadsEachCall(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "one@x.com")
	if got := AdminEmailsFromEnv(); !reflect.DeepEqual(got, []string{"one@x.com"}) {
		t.Fatalf("first read = %v", got)
	}
	t.Setenv("ADMIN_EMAILS", "two@x.com")
	if got := AdminEmailsFromEnv(); !reflect.DeepEqual(got, []string{"two@x.com"}) {
		t.Errorf("second read = %v", got)
	}
}
