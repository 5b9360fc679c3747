package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/shelf/internal/access"
	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/auth"
	"github.com/sakif/shelf/internal/cursor"
	"github.com/sakif/shelf/internal/genre"
	"github.com/sakif/shelf/internal/link"
	"github.com/sakif/shelf/internal/model"
	"github.com/sakif/shelf/internal/repository"
)

// Limits and page sizes. Lengths are counted in Unicode code points.
const (
	MaxTitleLength = 120
	MaxBlurbLength = 300

	DefaultFeedLimit = 10
	MaxFeedLimit     = 50

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notifier is told after every committed mutation. live.Hub implements it.
type Notifier interface {
	Publish()
}

// RecommendationService is the Recommendation Store.
type RecommendationService struct {
	store    repository.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewRecommendationService wires the service. notifier may be nil.
func NewRecommendationService(store repository.Store, notifier Notifier, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// =========================================================================
// READS
// =========================================================================

// ListLatest returns the newest recommendations with their authors.
// It needs no authentication. limit <= 0 means DefaultFeedLimit.
func (s *RecommendationService) ListLatest(ctx context.Context, limit int) ([]model.RecommendationWithAuthor, error) {
	return s.feed(ctx, repository.ListOptions{Limit: clamp(limit, DefaultFeedLimit, MaxFeedLimit)})
}

// ListFeatured returns the newest staff picks. Same rules as ListLatest.
func (s *RecommendationService) ListFeatured(ctx context.Context, limit int) ([]model.RecommendationWithAuthor, error) {
	return s.feed(ctx, repository.ListOptions{
		FeaturedOnly: true,
		Limit:        clamp(limit, DefaultFeedLimit, MaxFeedLimit),
	})
}

func (s *RecommendationService) feed(ctx context.Context, opts repository.ListOptions) ([]model.RecommendationWithAuthor, error) {
	var out []model.RecommendationWithAuthor
	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		recs, err := q.ListRecommendations(ctx, opts)
		if err != nil {
			return err
		}
		out, err = withAuthors(ctx, q, recs)
		return err
	})
	if err != nil {
		s.logger.Error("failed to list feed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	return out, nil
}

// ListPaged walks the shelf newest-first, optionally filtered by genre.
//
// Requires a verified identity (no directory record needed). An empty
// genreValue means "all genres"; anything else must be a registry value.
// cursorToken is "" for the first page, then the Cursor of the previous page.
func (s *RecommendationService) ListPaged(ctx context.Context, genreValue, cursorToken string, numItems int) (*model.Page[model.RecommendationWithAuthor], error) {
	if _, ok := auth.IdentityFromContext(ctx); !access.CanMutateAny(ok) {
		return nil, apperror.Unauthenticated()
	}

	scope := cursor.ScopeAll
	opts := repository.ListOptions{}
	if genreValue != "" {
		if !genre.IsValid(genreValue) {
			return nil, apperror.InvalidGenre(genreValue)
		}
		scope = cursor.ScopeGenre(genreValue)
		opts.Genre = genreValue
	}

	return s.page(ctx, scope, opts, cursorToken, numItems, nil)
}

// ListMine pages through the caller's own recommendations.
// The caller must be synced; their id comes from the directory, not the request.
func (s *RecommendationService) ListMine(ctx context.Context, cursorToken string, numItems int) (*model.Page[model.RecommendationWithAuthor], error) {
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return nil, apperror.Unauthenticated()
	}

	return s.page(ctx, "", repository.ListOptions{}, cursorToken, numItems, func(q repository.Queries, opts *repository.ListOptions) (cursor.Scope, error) {
		user, err := resolveCaller(ctx, q)
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", apperror.UserNotSynced()
		}
		opts.OwnerID = user.ID
		return cursor.ScopeOwner(user.ID), nil
	})
}

// page runs one cursor step inside a transaction.
//
// PAGINATION:
// Rows are fetched as numItems+1: the extra row only answers "is there
// more?" and is not returned. The next cursor points just below the last
// delivered row's seq. Once a page comes back short, the cursor is marked
// done and any further call with it returns an empty page.
//
// bind, when set, runs inside the transaction to fill filters that depend
// on the caller (ListMine's owner id) and returns the resulting scope.
func (s *RecommendationService) page(
	ctx context.Context,
	scope cursor.Scope,
	opts repository.ListOptions,
	cursorToken string,
	numItems int,
	bind func(q repository.Queries, opts *repository.ListOptions) (cursor.Scope, error),
) (*model.Page[model.RecommendationWithAuthor], error) {
	numItems = clamp(numItems, DefaultPageSize, MaxPageSize)

	var result *model.Page[model.RecommendationWithAuthor]
	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		if bind != nil {
			var err error
			if scope, err = bind(q, &opts); err != nil {
				return err
			}
		}

		pos, err := cursor.Decode(cursorToken, scope)
		if err != nil {
			return err
		}
		if pos.Done {
			result = &model.Page[model.RecommendationWithAuthor]{
				Items:  []model.RecommendationWithAuthor{},
				Cursor: cursor.Encode(pos),
				IsDone: true,
			}
			return nil
		}

		opts.After = pos.After
		opts.Limit = numItems + 1
		recs, err := q.ListRecommendations(ctx, opts)
		if err != nil {
			return err
		}

		done := len(recs) <= numItems
		if !done {
			recs = recs[:numItems]
		}

		next := cursor.Position{Scope: scope, After: pos.After, Done: done}
		if len(recs) > 0 {
			next.After = recs[len(recs)-1].Seq
		}

		items, err := withAuthors(ctx, q, recs)
		if err != nil {
			return err
		}

		result = &model.Page[model.RecommendationWithAuthor]{
			Items:  items,
			Cursor: cursor.Encode(next),
			IsDone: done,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("paging recommendations: %w", err)
	}
	return result, nil
}

// withAuthors joins each record with its owner in one batch query.
// A missing owner yields Author == nil rather than an error.
func withAuthors(ctx context.Context, q repository.Queries, recs []model.Recommendation) ([]model.RecommendationWithAuthor, error) {
	ids := make([]string, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		if !seen[r.OwnerID] {
			seen[r.OwnerID] = true
			ids = append(ids, r.OwnerID)
		}
	}

	authors, err := q.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.RecommendationWithAuthor, len(recs))
	for i, r := range recs {
		out[i] = model.RecommendationWithAuthor{Recommendation: r, Author: authors[r.OwnerID]}
	}
	return out, nil
}

// =========================================================================
// MUTATIONS
// =========================================================================

// Add validates and stores a new recommendation owned by the caller.
//
// VALIDATION ORDER: title, genre, link, blurb. The first failure wins, so
// a request with several bad fields always reports the same one. Only then
// is the caller's directory record resolved (UserNotSynced if missing).
func (s *RecommendationService) Add(ctx context.Context, title, genreValue, rawLink, blurb string) (string, error) {
	if _, ok := auth.IdentityFromContext(ctx); !access.CanMutateAny(ok) {
		return "", apperror.Unauthenticated()
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.ValidationFailed("title", "Title is required.")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or fewer.", MaxTitleLength))
	}

	if strings.TrimSpace(genreValue) == "" {
		return "", apperror.ValidationFailed("genre", "Genre is required.")
	}
	if !genre.IsValid(genreValue) {
		return "", apperror.InvalidGenre(genreValue)
	}

	safeLink, err := link.Validate(rawLink)
	if err != nil {
		return "", err
	}

	blurb = strings.TrimSpace(blurb)
	if blurb == "" {
		return "", apperror.ValidationFailed("blurb", "Blurb is required.")
	}
	if utf8.RuneCountInString(blurb) > MaxBlurbLength {
		return "", apperror.ValidationFailed("blurb",
			fmt.Sprintf("Blurb must be %d characters or fewer.", MaxBlurbLength))
	}

	rec := &model.Recommendation{
		Title:      title,
		Genre:      genreValue,
		Link:       safeLink,
		Blurb:      blurb,
		IsFeatured: false,
	}
	err = s.store.Atomic(ctx, func(q repository.Queries) error {
		user, err := resolveCaller(ctx, q)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.UserNotSynced()
		}
		rec.OwnerID = user.ID
		return q.InsertRecommendation(ctx, rec)
	})
	if err != nil {
		return "", s.mutationFailed("add", "", err)
	}

	s.logger.Info("recommendation added",
		slog.String("id", rec.ID),
		slog.String("genre", rec.Genre),
		slog.String("owner", rec.OwnerID),
	)
	s.publish()
	return rec.ID, nil
}

// Remove deletes a recommendation. Owners may delete their own; admins may
// delete any. The read, the ownership check and the delete share one
// transaction, so the record cannot change hands in between.
func (s *RecommendationService) Remove(ctx context.Context, id string) error {
	if _, ok := auth.IdentityFromContext(ctx); !access.CanMutateAny(ok) {
		return apperror.Unauthenticated()
	}

	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		rec, err := q.GetRecommendation(ctx, id)
		if err != nil {
			return err
		}
		user, err := resolveCaller(ctx, q)
		if err != nil {
			return err
		}
		if !access.CanDelete(user, rec) {
			return apperror.Forbidden("Forbidden: you can only delete your own recommendations.")
		}
		return q.DeleteRecommendation(ctx, id)
	})
	if err != nil {
		return s.mutationFailed("remove", id, err)
	}

	s.logger.Info("recommendation removed", slog.String("id", id))
	s.publish()
	return nil
}

// ToggleFeatured flips the staff-pick flag and returns the new value.
// Admin only: the role check comes before the lookup, so a non-admin
// learns nothing about which ids exist.
func (s *RecommendationService) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	if _, ok := auth.IdentityFromContext(ctx); !access.CanMutateAny(ok) {
		return false, apperror.Unauthenticated()
	}

	var featured bool
	err := s.store.Atomic(ctx, func(q repository.Queries) error {
		user, err := resolveCaller(ctx, q)
		if err != nil {
			return err
		}
		if !access.CanToggleFeatured(user) {
			return apperror.Forbidden("Forbidden: Staff Pick is an admin-only action.")
		}

		rec, err := q.GetRecommendation(ctx, id)
		if err != nil {
			return err
		}
		featured = !rec.IsFeatured
		return q.SetFeatured(ctx, id, featured)
	})
	if err != nil {
		return false, s.mutationFailed("toggle featured", id, err)
	}

	s.logger.Info("recommendation featured toggled",
		slog.String("id", id),
		slog.Bool("featured", featured),
	)
	s.publish()
	return featured, nil
}

// mutationFailed logs storage failures and passes domain errors through.
// Rejections (not found, forbidden, ...) are normal outcomes, not errors.
func (s *RecommendationService) mutationFailed(op, id string, err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		s.logger.Error("recommendation "+op+" failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	return fmt.Errorf("%s recommendation: %w", op, err)
}

func (s *RecommendationService) publish() {
	if s.notifier != nil {
		s.notifier.Publish()
	}
}

// clamp applies a default for non-positive n and an upper bound.
func clamp(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
