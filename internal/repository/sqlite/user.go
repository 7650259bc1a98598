package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/model"
	"github.com/karhu/shaker/internal/repository"
)

// UserStore implements repository.UserRepository over the shared pool.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user, generating its surrogate ID and creation time.
//
// The partial unique index on external_id means two concurrent first-contacts
// for the same external ID race here and exactly one insert wins. The loser
// gets an apperror.Conflict, which the identity resolver turns into a fresh
// lookup rather than a failure.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, external_id, display_name, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.ID,
		user.ExternalID,
		user.DisplayName,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.ExternalID)
		}
		return apperror.Store(fmt.Sprintf("inserting user %q", user.DisplayName), err)
	}

	return nil
}

// GetByID retrieves a user by its surrogate ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, external_id, display_name, created_at
		 FROM users WHERE id = ?`,
		"user", id)
}

// GetByExternalID retrieves a user by its platform-stable external ID.
// Returns apperror.ErrNotFound on a miss. Callers must not pass "" — the
// empty string marks "no external ID" and is never a lookup key.
func (s *UserStore) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, external_id, display_name, created_at
		 FROM users WHERE external_id = ? AND external_id <> ''`,
		"user", externalID)
}

// GetByDisplayName retrieves a user by exact (case-sensitive) display name.
// Returns apperror.ErrNotFound on a miss. Display names are not unique; if
// several rows share a name, whichever the store returns first wins — the
// same behaviour the resolver's name leg has always had.
func (s *UserStore) GetByDisplayName(ctx context.Context, displayName string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, external_id, display_name, created_at
		 FROM users WHERE display_name = ? LIMIT 1`,
		"user", displayName)
}

// getUser runs a single-row user query, mapping sql.ErrNoRows to NotFound
// and anything else to a Store error.
func (s *UserStore) getUser(ctx context.Context, query, resource, key string) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx, query, key).Scan(
		&u.ID,
		&u.ExternalID,
		&u.DisplayName,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(resource, key)
		}
		return nil, apperror.Store(fmt.Sprintf("getting %s %q", resource, key), err)
	}
	return &u, nil
}

// Update rewrites a user's mutable identity fields. The surrogate ID and
// created_at are never part of the statement.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET external_id = ?, display_name = ? WHERE id = ?`,
		user.ExternalID,
		user.DisplayName,
		user.ID,
	)
	if err != nil {
		return apperror.Store(fmt.Sprintf("updating user %s", user.ID), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Store(fmt.Sprintf("updating user %s", user.ID), err)
	}
	if rows == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// Count returns the total number of user rows.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, apperror.Store("counting users", err)
	}
	return count, nil
}

// ListDisplayNames returns every user's display name, one entry per user,
// in insertion-dependent order.
func (s *UserStore) ListDisplayNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT display_name FROM users`)
	if err != nil {
		return nil, apperror.Store("listing display names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperror.Store("scanning display name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("listing display names", err)
	}

	return names, nil
}

// isUniqueViolation reports whether err is SQLite's unique-constraint error.
// modernc.org/sqlite surfaces it as a plain error with the standard SQLite
// message, so matching on the message text is the portable check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
