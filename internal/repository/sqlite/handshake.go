package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/model"
	"github.com/karhu/shaker/internal/repository"
)

// HandshakeStore implements repository.HandshakeRepository over the shared
// pool.
type HandshakeStore struct {
	conn *sql.DB
}

// compile-time check that *HandshakeStore implements repository.HandshakeRepository
var _ repository.HandshakeRepository = (*HandshakeStore)(nil)

// Create inserts a new handshake and re-reads the inserted row, so callers
// get the canonical persisted record rather than an echo of their input.
func (s *HandshakeStore) Create(ctx context.Context, shake *model.Handshake) error {
	id := xid.New().String()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO handshakes (id, user_id, world_name, created_at)
		 VALUES (?, ?, ?, ?)`,
		id,
		shake.UserID,
		shake.WorldName,
		time.Now().UTC(),
	)
	if err != nil {
		return apperror.Store(fmt.Sprintf("inserting handshake for user %s", shake.UserID), err)
	}

	created, err := s.GetByID(ctx, id)
	if err != nil {
		return apperror.Store(fmt.Sprintf("re-reading handshake %s", id), err)
	}
	*shake = *created

	return nil
}

// GetByID retrieves a handshake by its surrogate ID.
// Returns apperror.ErrNotFound if no handshake exists with that ID.
func (s *HandshakeStore) GetByID(ctx context.Context, id string) (*model.Handshake, error) {
	var h model.Handshake
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, world_name, created_at
		 FROM handshakes WHERE id = ?`,
		id,
	).Scan(
		&h.ID,
		&h.UserID,
		&h.WorldName,
		&h.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("handshake", id)
		}
		return nil, apperror.Store(fmt.Sprintf("getting handshake %s", id), err)
	}

	return &h, nil
}

// Count returns the total number of handshake rows.
func (s *HandshakeStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM handshakes`).Scan(&count)
	if err != nil {
		return 0, apperror.Store("counting handshakes", err)
	}
	return count, nil
}

// CountForUser returns the number of handshakes belonging to userID.
// A user with no handshakes yields 0, not an error.
func (s *HandshakeStore) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM handshakes WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, apperror.Store(fmt.Sprintf("counting handshakes for user %s", userID), err)
	}
	return count, nil
}
