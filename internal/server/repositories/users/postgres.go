// Package users provides a PostgreSQL-backed repository for account
// credential records.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MohamedLemine13/JobPortal/internal/common"
	"github.com/MohamedLemine13/JobPortal/internal/dbx"
	"github.com/MohamedLemine13/JobPortal/internal/server/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account with an app-generated id.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, role, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	user.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role.String(), user.IsVerified).
		Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const userColumns = `id, email, password_hash, role, is_verified,
		failed_login_attempts, locked_until, last_login_at, created_at`

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.IsVerified,
		&user.FailedLoginAttempts, &user.LockedUntil, &user.LastLoginAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Role = models.Role(role)
	return user, nil
}

// GetByEmail returns the account row for the given email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByEmailForUpdate locks the account row for the rest of the enclosing
// transaction, serializing concurrent logins against the lockout counter.
func (r *PostgresRepository) GetByEmailForUpdate(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		FOR UPDATE
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns the account row for the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// ExistsByEmail reports whether an account with the email exists.
func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Save writes the columns this core mutates back to the row.
func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    is_verified = $3,
		    failed_login_attempts = $4,
		    locked_until = $5,
		    last_login_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.PasswordHash, user.IsVerified,
		user.FailedLoginAttempts, user.LockedUntil, user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
