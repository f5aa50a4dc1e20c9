package models

import "time"

// RefreshToken is a persisted refresh token record. Token is the signed JWT
// and acts as the lookup key. IsRevoked only ever goes from false to true.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now. Expiry is
// derived, never stored: a record may be both active and expired.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
