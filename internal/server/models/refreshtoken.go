package models

import "time"

// RefreshToken is one ledger record: an opaque-to-the-client token string,
// the user it was issued to, and when it stops being exchangeable. A record
// is deleted the moment it is used (rotation) or revoked.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
