// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents one person who has shaken hands, unified across the two
// identity signals the platform gives us.
//
// IDENTITY FIELDS:
// The platform exposes a stable external ID and a mutable display name, and a
// user may show up with either one first. Legacy imports only know the name;
// live handshakes usually carry both. The store reconciles the two on every
// handshake (see service.IdentityService), so both fields can start out
// missing or stale and heal over time.
//
// WHY ExternalID string (not *string)?
// Legacy users have no external ID at all. We use the empty string as the
// zero value rather than a nullable pointer — simpler to work with, and any
// non-empty value is treated as present.
//
// ID is our own surrogate key (an xid), generated at insert and never changed
// afterwards. It is the only stable join key for handshakes; external_id and
// display_name are both allowed to change underneath it.
type User struct {
	ID          string    `json:"id"          db:"id"`
	ExternalID  string    `json:"externalId"  db:"external_id"`  // Platform-stable ID, "" for legacy users
	DisplayName string    `json:"displayName" db:"display_name"` // Last-known display name
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
