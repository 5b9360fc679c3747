package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/model"
)

// createTestUser inserts a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, externalID string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ExternalID: externalID,
		Name:       "User " + externalID,
		Email:      externalID + "@example.com",
		AvatarURL:  "https://avatars.githubusercontent.com/u/123",
		Role:       role,
	}
	if err := db.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// =========================================================================
// INSERT TESTS
// =========================================================================

func TestInsertUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{ExternalID: "github|12345", Name: "Test", Email: "test@example.com", Role: model.RoleAdmin}
	if err := db.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}

	if u.ID == "" {
		t.Error("InsertUser() did not set ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("InsertUser() did not set timestamps")
	}

	found, err := db.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.ExternalID != "github|12345" || found.Role != model.RoleAdmin || found.Email != "test@example.com" {
		t.Errorf("stored user = %+v", found)
	}
}

func TestInsertUser_DuplicateExternalID(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "github|99999", model.RoleUser)

	err := db.InsertUser(context.Background(), &model.User{ExternalID: "github|99999"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("InsertUser() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetUserByExternalID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "github|778899", model.RoleUser)

	found, err := db.GetUserByExternalID(context.Background(), "github|778899")
	if err != nil {
		t.Fatalf("GetUserByExternalID() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetUserByExternalID(ctx, "github|0"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByExternalID() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByID(ctx, "nonexistent-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUsersByIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, createTestUser(t, db, fmt.Sprintf("github|%d", i), model.RoleUser).ID)
	}

	got, err := db.GetUsersByIDs(ctx, append(ids, "missing"))
	if err != nil {
		t.Fatalf("GetUsersByIDs() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, id := range ids {
		if got[id] == nil || got[id].ID != id {
			t.Errorf("missing user %s", id)
		}
	}
	if _, ok := got["missing"]; ok {
		t.Error("unknown id should be absent")
	}

	empty, err := db.GetUsersByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetUsersByIDs(nil) = %v, %v", empty, err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateUserProfile_KeepsRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "github|5", model.RoleAdmin)

	u.Name = "Renamed"
	u.Email = "new@example.com"
	u.AvatarURL = ""
	u.Role = model.RoleUser // must not be persisted
	if err := db.UpdateUserProfile(ctx, u); err != nil {
		t.Fatalf("UpdateUserProfile() error = %v", err)
	}

	found, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Name != "Renamed" || found.Email != "new@example.com" || found.AvatarURL != "" {
		t.Errorf("profile not updated: %+v", found)
	}
	if found.Role != model.RoleAdmin {
		t.Errorf("Role = %v, want admin", found.Role)
	}
}

func TestUpdateUserProfile_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := db.UpdateUserProfile(context.Background(), &model.User{ID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUserProfile() error = %v, want ErrNotFound", err)
	}
}
