// Package service contains the business logic layer of the application.
//
// Two services live here:
//   - IdentityService — maps the platform's (external ID, display name) pair
//     to exactly one durable user, creating or correcting rows as needed
//   - LedgerService — records handshake events against resolved users and
//     answers the counting queries
//
// Both depend only on the repository interfaces, never on the sqlite package.
// That keeps them callable from the HTTP handlers, the legacy importer, and
// the tests (which inject in-memory mocks) without change.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/model"
	"github.com/karhu/shaker/internal/repository"
)

// IdentityService resolves inbound identity signals to durable user records.
//
// WHY TWO LOOKUP KEYS?
// Display names are mutable on the platform, and legacy data carries names
// only. A user may first appear with just a name and later reappear with a
// stable external ID. The resolver has to unify both sightings into one row
// whose surrogate ID never changes, because handshakes join on it.
type IdentityService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users repository.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		logger: logger,
	}
}

// ResolveOrCreate maps (externalID, displayName) to exactly one user:
//
//  1. Look up by external ID, if one was given. A hit wins immediately —
//     the external ID is the more trustworthy signal, so even if a different
//     row would have matched by name, the ID match is used and the name
//     match is never consulted ("ID wins silently").
//  2. Otherwise look up by exact, case-sensitive display name.
//  3. A matched row self-heals: an absent external ID is filled in (a
//     present one is never overwritten with a different value), and the
//     display name is refreshed to the latest-seen value.
//  4. No match by either key creates a new user.
//
// The lookup-then-insert sequence is not one transaction; the unique index
// on external_id arbitrates concurrent first-contacts instead. The loser's
// insert comes back as a conflict, which we treat as "the row exists now"
// and answer with a retried lookup.
//
// At least one of the two signals must be non-empty.
func (s *IdentityService) ResolveOrCreate(ctx context.Context, externalID, displayName string) (*model.User, error) {
	if externalID == "" && displayName == "" {
		return nil, apperror.ValidationFailed("name", "an external ID or display name is required")
	}

	user, err := s.lookup(ctx, externalID, displayName)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		s.logger.Error("identity lookup failed",
			slog.String("external_id", externalID),
			slog.String("display_name", displayName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if user != nil {
		return s.heal(ctx, user, externalID, displayName)
	}

	created := &model.User{
		ExternalID:  externalID,
		DisplayName: displayName,
	}
	err = s.users.Create(ctx, created)
	if err == nil {
		s.logger.Info("user created",
			slog.String("id", created.ID),
			slog.String("external_id", created.ExternalID),
			slog.String("display_name", created.DisplayName),
		)
		return created, nil
	}

	if errors.Is(err, apperror.ErrConflict) {
		// A concurrent request created the row between our lookup and our
		// insert. The row exists now, so repeat the lookup instead of failing.
		user, retryErr := s.lookup(ctx, externalID, displayName)
		if retryErr == nil {
			return s.heal(ctx, user, externalID, displayName)
		}
		s.logger.Error("identity lookup retry after conflict failed",
			slog.String("external_id", externalID),
			slog.String("error", retryErr.Error()),
		)
	} else {
		s.logger.Error("failed to create user",
			slog.String("external_id", externalID),
			slog.String("display_name", displayName),
			slog.String("error", err.Error()),
		)
	}
	return nil, err
}

// Lookup resolves (externalID, displayName) with the same two-step priority
// as ResolveOrCreate but never creates or modifies anything. Returns
// apperror.ErrNotFound when neither key matches a stored user. Used by the
// read-only query paths, where an unknown identity is a NotFound answer
// rather than an implicit signup.
func (s *IdentityService) Lookup(ctx context.Context, externalID, displayName string) (*model.User, error) {
	user, err := s.lookup(ctx, externalID, displayName)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("identity lookup failed",
			slog.String("external_id", externalID),
			slog.String("display_name", displayName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return user, nil
}

// lookup runs the two lookup legs in priority order. The name leg only runs
// when the ID leg was skipped or missed.
func (s *IdentityService) lookup(ctx context.Context, externalID, displayName string) (*model.User, error) {
	if externalID != "" {
		user, err := s.users.GetByExternalID(ctx, externalID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}

	if displayName != "" {
		return s.users.GetByDisplayName(ctx, displayName)
	}

	return nil, apperror.NotFound("user", externalID)
}

// heal brings a matched row's identity fields up to date with the inbound
// signals before returning it. The update is persisted before the resolved
// user is handed to the caller.
func (s *IdentityService) heal(ctx context.Context, user *model.User, externalID, displayName string) (*model.User, error) {
	fillID := user.ExternalID == "" && externalID != ""
	renamed := displayName != "" && user.DisplayName != displayName
	if !fillID && !renamed {
		return user, nil
	}

	if fillID {
		user.ExternalID = externalID
	}
	if renamed {
		user.DisplayName = displayName
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to heal user identity",
			slog.String("id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user identity healed",
		slog.String("id", user.ID),
		slog.String("external_id", user.ExternalID),
		slog.String("display_name", user.DisplayName),
	)
	return user, nil
}
