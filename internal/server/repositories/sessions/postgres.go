// Package sessions provides a PostgreSQL-backed repository for refresh
// sessions.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MohamedLemine13/JobPortal/internal/common"
	"github.com/MohamedLemine13/JobPortal/internal/dbx"
	"github.com/MohamedLemine13/JobPortal/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new session row and returns its app-generated id.
func (r *PostgresRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, query, id, userID, tokenHash, expiresAt); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// FindByTokenHash returns the session row for the given token digest.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).
		Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// RevokeAllByUserID stamps every still-valid session of the user as revoked.
// The WHERE clause keeps already-revoked rows untouched, so a session is
// never revoked twice and the operation is idempotent.
func (r *PostgresRepository) RevokeAllByUserID(ctx context.Context, userID string, now time.Time) error {
	query := `
		UPDATE sessions
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// HasValidSession reports whether the user holds any unrevoked, unexpired session.
func (r *PostgresRepository) HasValidSession(ctx context.Context, userID string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// DeleteExpired removes sessions whose expiry is past, revoked or not.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
