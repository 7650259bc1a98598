package model

import "time"

// Handshake is one recorded handshake event. Handshakes are append-only:
// they are created through the ledger and never updated or deleted.
//
// UserID references the owning User's surrogate ID, which never changes even
// when the user's external_id or display_name do. WorldName is a free-form
// context label; it is stored verbatim and may be empty (legacy imports have
// no world).
type Handshake struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	WorldName string    `json:"worldName" db:"world_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
