package service

import (
	"context"
	"log/slog"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/model"
	"github.com/karhu/shaker/internal/repository"
)

// LedgerService durably records handshake events and answers count queries.
//
// Every recorded handshake goes through the identity resolver first, so the
// handshake row always references a durable user ID — even when the inbound
// identity signals were stale or incomplete.
type LedgerService struct {
	identity *IdentityService
	users    repository.UserRepository
	shakes   repository.HandshakeRepository
	logger   *slog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	identity *IdentityService,
	users repository.UserRepository,
	shakes repository.HandshakeRepository,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		identity: identity,
		users:    users,
		shakes:   shakes,
		logger:   logger,
	}
}

// RecordHandshake resolves (externalID, displayName) to a user — creating or
// healing the record as needed — and appends one handshake referencing it.
// The returned handshake is the re-read persisted row, so the caller sees
// the server-assigned ID and timestamp, not an echo of its input.
//
// worldName is stored verbatim; empty is allowed and never validated against
// any list of known worlds.
func (s *LedgerService) RecordHandshake(ctx context.Context, externalID, displayName, worldName string) (*model.Handshake, error) {
	user, err := s.identity.ResolveOrCreate(ctx, externalID, displayName)
	if err != nil {
		return nil, err
	}

	shake := &model.Handshake{
		UserID:    user.ID,
		WorldName: worldName,
	}
	if err := s.shakes.Create(ctx, shake); err != nil {
		s.logger.Error("failed to record handshake",
			slog.String("user_id", user.ID),
			slog.String("world_name", worldName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("handshake recorded",
		slog.String("id", shake.ID),
		slog.String("user_id", shake.UserID),
		slog.String("world_name", shake.WorldName),
	)
	return shake, nil
}

// RecordLegacy records a historical handshake known only by display name.
// The user is found or created by name alone — no external-ID reconciliation
// happens on this path — and the attached handshake has no world.
func (s *LedgerService) RecordLegacy(ctx context.Context, displayName string) (*model.Handshake, error) {
	if displayName == "" {
		return nil, apperror.ValidationFailed("name", "display name is required")
	}
	return s.RecordHandshake(ctx, "", displayName, "")
}

// CountUsers returns the total number of distinct users.
func (s *LedgerService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", slog.String("error", err.Error()))
		return 0, err
	}
	return count, nil
}

// CountHandshakes returns the total number of recorded handshakes.
func (s *LedgerService) CountHandshakes(ctx context.Context) (int64, error) {
	count, err := s.shakes.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count handshakes", slog.String("error", err.Error()))
		return 0, err
	}
	return count, nil
}

// CountHandshakesForUser returns how many handshakes the user identified by
// (externalID, displayName) has recorded. This is a lookup-only path: unlike
// RecordHandshake it never creates a user, and an identity matching no
// stored user is a NotFound answer. A known user with no handshakes counts
// 0, not an error.
func (s *LedgerService) CountHandshakesForUser(ctx context.Context, externalID, displayName string) (int64, error) {
	user, err := s.identity.Lookup(ctx, externalID, displayName)
	if err != nil {
		return 0, err
	}

	count, err := s.shakes.CountForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to count handshakes for user",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return 0, err
	}
	return count, nil
}

// ListUserDisplayNames returns every user's last-known display name, one per
// user. Order is insertion-dependent and not guaranteed stable across calls
// if writes happen concurrently.
func (s *LedgerService) ListUserDisplayNames(ctx context.Context) ([]string, error) {
	names, err := s.users.ListDisplayNames(ctx)
	if err != nil {
		s.logger.Error("failed to list display names", slog.String("error", err.Error()))
		return nil, err
	}
	return names, nil
}
