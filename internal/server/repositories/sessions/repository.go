// Package sessions declares the server-side repository contract for refresh
// sessions: the persisted hash, validity window, and revocation state of
// every issued refresh token.
package sessions

import (
	"context"
	"time"

	"github.com/MohamedLemine13/JobPortal/internal/server/models"
)

// Repository defines operations for creating, querying, revoking, and
// sweeping refresh sessions.
type Repository interface {
	// Create stores a new session for userID, keyed by the token digest,
	// and returns the session id.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)

	// FindByTokenHash looks up a session by token digest. Absent sessions
	// yield common.ErrorNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)

	// RevokeAllByUserID stamps revoked_at = now on every still-valid
	// session of the user. Revoking when nothing is valid is not an error.
	RevokeAllByUserID(ctx context.Context, userID string, now time.Time) error

	// HasValidSession reports whether the user has at least one session
	// that is neither revoked nor expired at now.
	HasValidSession(ctx context.Context, userID string, now time.Time) (bool, error)

	// DeleteExpired physically removes sessions whose expiry is past and
	// returns how many rows went away. Maintenance only, never on the
	// login/refresh path.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
