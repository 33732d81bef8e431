package models

import "time"

// Session is the server-side record of an issued refresh token. TokenHash is
// the SHA-256 digest of the raw token; the raw value is never stored. The
// only mutation a session ever sees is the one-way transition
// unrevoked → revoked.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the session can still be exchanged for access
// tokens at now: not revoked and not past its expiry.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
