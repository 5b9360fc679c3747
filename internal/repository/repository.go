// Package repository declares the storage contracts the services depend on.
//
// TRANSACTIONS:
// Every service operation runs inside Store.Atomic. The callback receives a
// Queries bound to one transaction; returning an error rolls everything back,
// returning nil commits. Implementations must not let a callback observe
// another transaction's uncommitted writes.
package repository

import (
	"context"

	"github.com/sakif/shelf/internal/model"
)

// ListOptions selects one page from the newest-first recommendation order.
//
// Genre, OwnerID and FeaturedOnly are filters; each maps to an index.
// After is an exclusive upper bound on seq (zero means no bound).
type ListOptions struct {
	Genre        string
	OwnerID      string
	FeaturedOnly bool
	After        int64
	Limit        int
}

type UserRepository interface {
	// GetUserByExternalID returns apperror.ErrNotFound when absent.
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUsersByIDs returns the users that exist, keyed by id.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	// InsertUser assigns ID and timestamps.
	InsertUser(ctx context.Context, user *model.User) error
	// UpdateUserProfile refreshes name, email and avatar. Role is untouched.
	UpdateUserProfile(ctx context.Context, user *model.User) error
}

type RecommendationRepository interface {
	// InsertRecommendation assigns ID, Seq and CreatedAt.
	InsertRecommendation(ctx context.Context, rec *model.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error)
	DeleteRecommendation(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	ListRecommendations(ctx context.Context, opts ListOptions) ([]model.Recommendation, error)
}

// Queries is everything a transaction can do.
type Queries interface {
	UserRepository
	RecommendationRepository
}

// Store runs fn inside a single transaction.
type Store interface {
	Atomic(ctx context.Context, fn func(q Queries) error) error
}
