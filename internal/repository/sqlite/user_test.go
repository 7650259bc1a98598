package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/model"
)

// newTestDB opens a store backed by a throwaway file in t.TempDir().
// A file rather than ":memory:" because sql.DB is a pool — each pooled
// connection would get its own private in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "shaker_test.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, externalID, displayName string) *model.User {
	t.Helper()
	user := &model.User{
		ExternalID:  externalID,
		DisplayName: displayName,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		ExternalID:  "U-abc123",
		DisplayName: "Alice",
	}

	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateExternalID(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "U-dup", "First")

	duplicate := &model.User{
		ExternalID:  "U-dup", // same external ID
		DisplayName: "Second",
	}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate external_id")
	}
	// The resolver relies on this being a Conflict, not a generic store error
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_ManyLegacyUsersWithoutExternalID(t *testing.T) {
	db := newTestDB(t)

	// The unique index is partial — any number of rows may carry '' for
	// external_id, since legacy imports never have one.
	createTestUser(t, db, "", "LegacyOne")
	createTestUser(t, db, "", "LegacyTwo")
	createTestUser(t, db, "", "LegacyThree")

	count, err := db.Users().Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserGetByExternalID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "U-lookup", "Alice")

	found, err := db.Users().GetByExternalID(context.Background(), "U-lookup")
	if err != nil {
		t.Fatalf("GetByExternalID() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want %q", found.DisplayName, "Alice")
	}
}

func TestUserGetByExternalID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByExternalID(context.Background(), "U-nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByExternalID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByExternalID_EmptyNeverMatchesLegacyRows(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "", "LegacyUser")

	// '' marks "no external ID"; it must never act as a lookup key, even
	// though legacy rows store it.
	_, err := db.Users().GetByExternalID(context.Background(), "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByExternalID(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByDisplayName(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "U-name", "Bob")

	found, err := db.Users().GetByDisplayName(context.Background(), "Bob")
	if err != nil {
		t.Fatalf("GetByDisplayName() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestUserGetByDisplayName_CaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "U-case", "Bob")

	_, err := db.Users().GetByDisplayName(context.Background(), "bob")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByDisplayName(\"bob\") error = %v, want ErrNotFound (match is case-sensitive)", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "", "OldName")
	createdAt := user.CreatedAt

	user.ExternalID = "U-healed"
	user.DisplayName = "NewName"
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if found.ExternalID != "U-healed" {
		t.Errorf("ExternalID = %q, want %q", found.ExternalID, "U-healed")
	}
	if found.DisplayName != "NewName" {
		t.Errorf("DisplayName = %q, want %q", found.DisplayName, "NewName")
	}
	if !found.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt changed on update: %v, want %v", found.CreatedAt, createdAt)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "nonexistent-id", DisplayName: "Ghost"}
	err := db.Users().Update(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COUNT & LIST TESTS
// =========================================================================

func TestUserCount_EmptyStore(t *testing.T) {
	db := newTestDB(t)

	count, err := db.Users().Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestUserListDisplayNames(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "U-1", "Alice")
	createTestUser(t, db, "U-2", "Bob")
	createTestUser(t, db, "", "Carol")

	names, err := db.Users().ListDisplayNames(context.Background())
	if err != nil {
		t.Fatalf("ListDisplayNames() error = %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"Alice", "Bob", "Carol"} {
		if !seen[want] {
			t.Errorf("ListDisplayNames() missing %q, got %v", want, names)
		}
	}
}
