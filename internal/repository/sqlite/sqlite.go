// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed, works
// everywhere Go works.
//
// The store is a single sql.DB pool shared by every request. Individual
// statements are atomic at the SQLite level; the compound resolve-or-create
// sequence in the service layer is protected by the unique index on
// external_id rather than by a transaction (see service.IdentityService).
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-table stores.
//
// WHY WRAP sql.DB IN A STRUCT?
//  1. We control the lifecycle (New creates it, Close destroys it)
//  2. Users() and Handshakes() expose the repository implementations, which
//     share this one pool
type DB struct {
	conn   *sql.DB
	users  *UserStore
	shakes *HandshakeStore
}

// New opens (creating if necessary) the SQLite database at dbPath and brings
// its schema up to date.
//
// dbPath examples:
//   - "shaker.db"  → file-based database (persistent, created on first open)
//   - ":memory:"   → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping forces the first connection so
	// a bad path or permissions problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — without it
	// SQLite locks the whole file during writes, which stalls a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; handshakes.user_id relies
	// on referential integrity being enforced.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:   conn,
		users:  &UserStore{conn: conn},
		shakes: &HandshakeStore{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserStore {
	return db.users
}

// Handshakes returns the handshake repository backed by this database.
func (db *DB) Handshakes() *HandshakeStore {
	return db.shakes
}

// Close closes the database connection pool, flushing the WAL and releasing
// the file lock. Always defer Close wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}
