package sqlite

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/karhu/shaker/internal/repository/sqlite/migrations"
)

// migrate applies the embedded schema migrations that haven't run yet.
//
// Migrations are plain SQL files named NNNN_description.sql, embedded at
// compile time and applied in lexical order. Each file runs at most once;
// applied names are tracked in the schema_migrations table, so restarting
// the server against an existing database only runs the new files.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("ensuring migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		var count int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, file,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", file, err)
		}

		// Each migration runs inside a transaction together with its
		// bookkeeping row, so a half-applied file can't be skipped later.
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (name) VALUES (?)`, file,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", file, err)
		}
	}

	return nil
}
