package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/model"
	"github.com/sakif/shelf/internal/repository"
)

const recommendationColumns = `seq, id, title, genre, link, blurb, owner_id, is_featured, created_at`

// InsertRecommendation stores rec and fills in ID, Seq and CreatedAt.
//
// Seq comes from the AUTOINCREMENT primary key, so it only ever grows:
// a deleted row's seq is never handed out again, which keeps outstanding
// cursors pointing at the right place in the order.
func (q *queries) InsertRecommendation(ctx context.Context, rec *model.Recommendation) error {
	rec.ID = xid.New().String()
	rec.CreatedAt = time.Now().UTC()

	res, err := q.ext.ExecContext(ctx,
		`INSERT INTO recommendations (id, title, genre, link, blurb, owner_id, is_featured, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Genre, rec.Link, rec.Blurb, rec.OwnerID, rec.IsFeatured, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting recommendation: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading recommendation seq: %w", err)
	}
	rec.Seq = seq
	return nil
}

// GetRecommendation returns apperror.ErrNotFound for unknown ids.
func (q *queries) GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error) {
	var rec model.Recommendation
	err := sqlx.GetContext(ctx, q.ext, &rec,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recommendation", id)
		}
		return nil, fmt.Errorf("sqlite: getting recommendation %s: %w", id, err)
	}
	return &rec, nil
}

func (q *queries) DeleteRecommendation(ctx context.Context, id string) error {
	res, err := q.ext.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recommendation %s: %w", id, err)
	}
	return expectOneRow(res, "recommendation", id)
}

func (q *queries) SetFeatured(ctx context.Context, id string, featured bool) error {
	res, err := q.ext.ExecContext(ctx,
		`UPDATE recommendations SET is_featured = ? WHERE id = ?`, featured, id)
	if err != nil {
		return fmt.Errorf("sqlite: setting featured on %s: %w", id, err)
	}
	return expectOneRow(res, "recommendation", id)
}

// ListRecommendations returns up to opts.Limit rows, newest first.
//
// Only the filters that are set make it into the WHERE clause, so each
// listing lines up with one index: (genre, seq), (owner_id, seq),
// (is_featured, seq), or the primary key for the unfiltered order.
func (q *queries) ListRecommendations(ctx context.Context, opts repository.ListOptions) ([]model.Recommendation, error) {
	var (
		where []string
		args  []any
	)
	if opts.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, opts.Genre)
	}
	if opts.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, opts.OwnerID)
	}
	if opts.FeaturedOnly {
		where = append(where, "is_featured = 1")
	}
	if opts.After > 0 {
		where = append(where, "seq < ?")
		args = append(args, opts.After)
	}

	query := `SELECT ` + recommendationColumns + ` FROM recommendations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, opts.Limit)

	recs := []model.Recommendation{}
	if err := sqlx.SelectContext(ctx, q.ext, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing recommendations: %w", err)
	}
	return recs, nil
}

// expectOneRow turns "statement matched nothing" into apperror.NotFound.
func expectOneRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE || code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
}
