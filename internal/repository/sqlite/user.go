package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/model"
)

const userColumns = `id, external_id, email, name, avatar_url, role, created_at, updated_at`

// GetUserByExternalID looks a user up by identity-provider subject.
// Returns apperror.ErrNotFound if nobody has synced with that subject yet.
func (q *queries) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, q.ext, &u,
		`SELECT `+userColumns+` FROM users WHERE external_id = ?`, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, fmt.Errorf("sqlite: getting user by external id %s: %w", externalID, err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (q *queries) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, q.ext, &u,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUsersByIDs batch-loads authors for a page of recommendations.
//
// sqlx.In expands the single "?" into one placeholder per id, so a page of
// twenty records costs one query instead of twenty. Missing ids are simply
// absent from the map.
func (q *queries) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: building user batch query: %w", err)
	}

	var users []model.User
	if err := sqlx.SelectContext(ctx, q.ext, &users, q.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlite: batch loading %d users: %w", len(ids), err)
	}

	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// InsertUser creates a new directory record. ID and timestamps are assigned
// here; the caller supplies ExternalID, profile fields and Role.
// A duplicate external id is reported as apperror.ErrConflict.
func (q *queries) InsertUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, q.ext,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:id, :external_id, :email, :name, :avatar_url, :role, :created_at, :updated_at)`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.ExternalID)
		}
		return fmt.Errorf("sqlite: inserting user (externalID=%s): %w", user.ExternalID, err)
	}
	return nil
}

// UpdateUserProfile refreshes the mutable profile fields. The role column is
// not in the statement, so a profile refresh can never promote or demote.
func (q *queries) UpdateUserProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := q.ext.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Email, user.AvatarURL, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return expectOneRow(res, "user", user.ID)
}
