package sqlite

import (
	"path/filepath"
	"testing"
)

func TestMigrate_AppliedOncePerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaker_migrate.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var applied int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if applied == 0 {
		t.Fatal("no migrations recorded after New()")
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening the same file must not re-run anything
	db2, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing db error = %v", err)
	}
	defer db2.Close()

	var appliedAgain int
	if err := db2.conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&appliedAgain); err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if appliedAgain != applied {
		t.Errorf("migration count changed on reopen: %d, want %d", appliedAgain, applied)
	}
}
