// Package repository defines the storage interfaces the service layer
// depends on. The concrete SQLite implementation lives in repository/sqlite;
// services only ever see these interfaces, which is what lets the service
// tests inject in-memory mocks.
package repository

import (
	"context"

	"github.com/karhu/shaker/internal/model"
)

// UserRepository stores and retrieves user records.
//
// GetByExternalID and GetByDisplayName are the two lookup legs of identity
// resolution. Both return apperror.ErrNotFound (wrapped) on a miss so the
// resolver can distinguish "no such user" from a real store failure.
type UserRepository interface {
	// Create inserts a new user, generating ID and CreatedAt. Returns a
	// conflict error if another row already holds the same external_id.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*model.User, error)
	// Update rewrites the mutable identity fields (external_id and
	// display_name) of an existing row. ID and CreatedAt are never touched.
	Update(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
	ListDisplayNames(ctx context.Context) ([]string, error)
}

// HandshakeRepository stores append-only handshake records.
type HandshakeRepository interface {
	// Create inserts a new handshake, generating ID and CreatedAt, and
	// re-reads the inserted row so the caller observes persisted state.
	Create(ctx context.Context, shake *model.Handshake) error
	GetByID(ctx context.Context, id string) (*model.Handshake, error)
	Count(ctx context.Context) (int64, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
}
