// Package refreshtokens implements the refresh-token lifecycle: issuance
// with at-rest hashing, validation, single-use rotation and revocation.
// Raw secrets are handed to the client once and never persisted; the store
// only ever sees their SHA-256 digest.
package refreshtokens

import "time"

// RefreshToken is one persisted refresh-token row. Rows are immutable except
// for the revoked/revoked_at pair and are only removed by expired-row
// cleanup.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
}

// Active reports whether the token can still be exchanged at the given time.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
