// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, authorizes, orchestrates
//	Repository (Data layer)  → reads/writes the store
//
// Services take a repository.Store (an interface), not *sqlite.DB, and do
// all of an operation's reads, checks and writes inside one Store.Atomic
// call. The caller's identity arrives in the context (set by the auth
// middleware); it is never a function argument, so nobody can act as
// somebody else by passing a different id.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/auth"
	"github.com/sakif/shelf/internal/model"
	"github.com/sakif/shelf/internal/repository"
)

// AdminEmailsFunc returns the current admin allow-list (lower-case emails).
// UserService calls it once per user creation, so the list can change
// without a restart.
type AdminEmailsFunc func() []string

// UserService is the User Directory.
type UserService struct {
	store       repository.Store
	adminEmails AdminEmailsFunc
	logger      *slog.Logger
}

func NewUserService(store repository.Store, adminEmails AdminEmailsFunc, logger *slog.Logger) *UserService {
	if adminEmails == nil {
		adminEmails = func() []string { return nil }
	}
	return &UserService{
		store:       store,
		adminEmails: adminEmails,
		logger:      logger,
	}
}

// Upsert creates or refreshes the caller's directory record and returns its id.
//
// UPSERT RULES:
//   - Keyed on the verified identity's subject, never on an argument.
//   - Existing record: name, email and avatar are overwritten; id and role
//     are kept. A user promoted by the allow-list stays admin even if their
//     email later changes, and removing an email from the list does not
//     demote anyone.
//   - New record: role is admin iff the token's email (case-folded) is on
//     the allow-list at this moment. The email argument only fills the
//     profile; the caller controls it, the identity provider controls the
//     token.
func (s *UserService) Upsert(ctx context.Context, name, email, avatarURL string) (string, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", apperror.Unauthenticated()
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	avatarURL = strings.TrimSpace(avatarURL)

	var (
		userID  string
		created bool
		role    model.Role
	)
	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		existing, err := q.GetUserByExternalID(ctx, identity.Subject)
		switch {
		case err == nil:
			existing.Name = name
			existing.Email = email
			existing.AvatarURL = avatarURL
			if err := q.UpdateUserProfile(ctx, existing); err != nil {
				return err
			}
			userID, role = existing.ID, existing.Role
			return nil

		case errors.Is(err, apperror.ErrNotFound):
			user := &model.User{
				ExternalID: identity.Subject,
				Name:       name,
				Email:      email,
				AvatarURL:  avatarURL,
				Role:       s.roleFor(identity.Email),
			}
			if err := q.InsertUser(ctx, user); err != nil {
				return err
			}
			userID, role, created = user.ID, user.Role, true
			return nil

		default:
			return err
		}
	})
	if err != nil {
		s.logger.Error("failed to upsert user",
			slog.String("subject", identity.Subject),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("upserting user: %w", err)
	}

	if created {
		s.logger.Info("user created",
			slog.String("id", userID),
			slog.String("role", role.String()),
		)
	}

	return userID, nil
}

// roleFor checks email against the allow-list as it is right now.
func (s *UserService) roleFor(email string) model.Role {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.RoleUser
	}
	for _, admin := range s.adminEmails() {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return model.RoleAdmin
		}
	}
	return model.RoleUser
}

// Current returns the caller's directory record, or nil when the caller is
// anonymous or has not synced yet. Neither case is an error.
func (s *UserService) Current(ctx context.Context) (*model.User, error) {
	var user *model.User
	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		var err error
		user, err = resolveCaller(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	return user, nil
}

// resolveCaller maps the context identity to its directory record.
// It returns (nil, nil) for anonymous or unsynced callers.
func resolveCaller(ctx context.Context, q repository.Queries) (*model.User, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := q.GetUserByExternalID(ctx, identity.Subject)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	return user, err
}
