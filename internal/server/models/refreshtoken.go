package models

import "time"

// RefreshToken is the persisted record behind a signed refresh token.
//
// ID is the rotation id embedded in the token's claims. A record moves from
// active to revoked exactly once and is never deleted by the service.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Revoked reports whether the record has been consumed or logged out.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// ExpiredAt reports whether the persisted expiry is before now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
