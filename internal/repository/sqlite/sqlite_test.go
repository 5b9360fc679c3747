package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/model"
	"github.com/sakif/shelf/internal/repository"
)

// newTestDB opens a fresh in-memory database with all migrations applied.
// The single-connection pool keeps it alive for the whole test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

func TestNew_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "recommendations", "schema_migrations"} {
		var n int
		err := db.conn.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}

	var version int
	if err := db.conn.Get(&version, `SELECT version FROM schema_migrations`); err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestNew_ForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	rec := &model.Recommendation{Title: "t", Genre: "drama", Link: "https://x.y", Blurb: "b", OwnerID: "no-such-user"}
	if err := db.InsertRecommendation(context.Background(), rec); err == nil {
		t.Fatal("insert with unknown owner should violate the foreign key")
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// =========================================================================
// ATOMIC TESTS
// =========================================================================

func TestAtomic_Commit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var id string
	err := db.Atomic(ctx, func(q repository.Queries) error {
		u := &model.User{ExternalID: "github|1", Name: "A"}
		if err := q.InsertUser(ctx, u); err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		t.Fatalf("Atomic() error = %v", err)
	}

	if _, err := db.GetUserByID(ctx, id); err != nil {
		t.Errorf("committed user not visible: %v", err)
	}
}

func TestAtomic_RollbackKeepsError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.Atomic(ctx, func(q repository.Queries) error {
		if err := q.InsertUser(ctx, &model.User{ExternalID: "github|2"}); err != nil {
			return err
		}
		return apperror.Forbidden("no")
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Atomic() error = %v, want ErrForbidden", err)
	}

	_, err = db.GetUserByExternalID(ctx, "github|2")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("rolled-back user still visible, err = %v", err)
	}
}

func TestAtomic_CancelledContext(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := db.Atomic(ctx, func(repository.Queries) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("Atomic() with cancelled context should fail")
	}
	if called {
		t.Error("callback should not run without a transaction")
	}
}
