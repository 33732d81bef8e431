// Package users declares the repository contract for account credential
// records. The auth core is the only writer of the lockout and password
// columns; everything else about an account belongs to other subsystems.
package users

import (
	"context"

	"github.com/MohamedLemine13/JobPortal/internal/server/models"
)

// Repository defines lookups and mutations on account credential records.
type Repository interface {
	// Create inserts a new account. A duplicate email yields
	// common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the account for the given email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByEmailForUpdate is GetByEmail with a row lock. Run it inside a
	// transaction so concurrent login attempts for the same account are
	// serialized against the failed-attempt counter.
	GetByEmailForUpdate(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the account for the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ExistsByEmail reports whether an account with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save persists the mutable columns: password hash, verified flag,
	// failed-attempt counter, lock-until, and last-login.
	Save(ctx context.Context, user *models.User) error
}
