// Package services contains the server-side business logic. This file
// implements AuthService, the only component exposed to the calling layer:
// it composes the credential verifier, the lockout tracker, the token
// signer, and the session store into register / login / refresh / logout /
// change-password operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MohamedLemine13/JobPortal/internal/common"
	"github.com/MohamedLemine13/JobPortal/internal/cryptox"
	"github.com/MohamedLemine13/JobPortal/internal/dbx"
	"github.com/MohamedLemine13/JobPortal/internal/logging"
	"github.com/MohamedLemine13/JobPortal/internal/server/auth"
	"github.com/MohamedLemine13/JobPortal/internal/server/config"
	"github.com/MohamedLemine13/JobPortal/internal/server/models"
	"github.com/MohamedLemine13/JobPortal/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserDTO is the identity projection returned alongside tokens.
type UserDTO struct {
	ID      string
	Email   string
	Role    models.Role
	Profile models.Profile
}

// AuthResponse is what Register and Login hand back to the calling layer.
type AuthResponse struct {
	User         UserDTO
	AccessToken  string
	RefreshToken string
}

// RegisterRequest carries the registration input. FullName seeds the
// profile projection; CompanyName is required for employer accounts.
type RegisterRequest struct {
	Email       string
	Password    string
	Role        string
	FullName    string
	CompanyName string
}

// AuthService provides the authentication operations:
//   - Register: create an account and mint tokens
//   - Login: verify credentials under lockout rules and mint tokens
//   - RefreshAccessToken: exchange a refresh token for a new access token
//   - Logout: revoke all of an account's sessions
//   - ChangePassword: re-hash the secret and revoke outstanding sessions
//
// The service is stateless between calls; all state lives in the stores.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	maxLoginAttempts             int
	lockoutDuration              time.Duration

	// now is a seam for the lockout-expiry tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService from repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		logger:                       logger.With("component", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		maxLoginAttempts:             cfg.MaxLoginAttempts,
		lockoutDuration:              cfg.LockoutDuration,
		now:                          time.Now,
	}
}

// Register creates a new auto-verified account, issues a token pair, and
// returns the role-appropriate profile projection.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}
	if role == models.RoleEmployer && req.CompanyName == "" {
		return nil, fmt.Errorf("company name is required for employer registration: %w", common.ErrInvalidInput)
	}

	usersRepo := s.repomanager.Users(s.db)
	exists, err := usersRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if exists {
		return nil, fmt.Errorf("email already registered: %w", common.ErrConflict)
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		// No email-verification flow: accounts are verified at creation.
		IsVerified: true,
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrConflict) {
				return fmt.Errorf("email already registered: %w", common.ErrConflict)
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created

		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		s.logger.Error(ctx, "registration failed", "email", req.Email, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "user_id", user.ID, "role", role.String())

	return &AuthResponse{
		User: UserDTO{
			ID:      user.ID,
			Email:   user.Email,
			Role:    user.Role,
			Profile: models.NewProfile(role, req.FullName, req.CompanyName),
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Login verifies the credentials under the lockout state machine and, on
// success, stamps last-login and issues a token pair.
//
// The whole attempt runs in one transaction with the account row locked, so
// concurrent guesses for the same account serialize against the
// failed-attempt counter. Lockout bookkeeping must survive a rejected
// attempt, so authentication failures are carried out of the transaction
// separately and the transaction itself commits.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var (
		resp    *AuthResponse
		authErr error
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// Known enumeration trade-off carried over from the
				// original system: the message reveals account absence.
				authErr = fmt.Errorf("no account found with this email address: %w", common.ErrorUnauthorized)
				return nil
			}
			return fmt.Errorf("error loading user: %w", err)
		}

		now := s.now()

		if user.IsLocked(now) {
			minutes := int(user.LockedUntil.Sub(now).Minutes()) + 1
			s.logger.Warn(ctx, "login rejected: account locked", "user_id", user.ID, "minutes_remaining", minutes)
			authErr = fmt.Errorf("account is locked, please try again in %d minute(s): %w", minutes, common.ErrorUnauthorized)
			return nil
		}

		// Lazy lock expiry: reset state before evaluating the new attempt.
		if user.LockExpired(now) {
			user.FailedLoginAttempts = 0
			user.LockedUntil = nil
		}

		if !cryptox.VerifyPassword(password, user.PasswordHash) {
			user.FailedLoginAttempts++

			if user.FailedLoginAttempts >= s.maxLoginAttempts {
				lockedUntil := now.Add(s.lockoutDuration)
				user.LockedUntil = &lockedUntil
				s.logger.Warn(ctx, "account locked after repeated failures",
					"user_id", user.ID, "attempts", user.FailedLoginAttempts)
				authErr = fmt.Errorf("too many failed attempts, account locked for %d minutes: %w",
					int(s.lockoutDuration.Minutes()), common.ErrorUnauthorized)
			} else {
				remaining := s.maxLoginAttempts - user.FailedLoginAttempts
				s.logger.Warn(ctx, "login rejected: incorrect password",
					"user_id", user.ID, "attempts_remaining", remaining)
				authErr = fmt.Errorf("incorrect password, %d attempt(s) remaining: %w",
					remaining, common.ErrorUnauthorized)
			}

			if err := repo.Save(ctx, user); err != nil {
				return fmt.Errorf("error saving attempt counter: %w", err)
			}
			return nil
		}

		if !user.IsVerified {
			s.logger.Warn(ctx, "login rejected: account not verified", "user_id", user.ID)
			authErr = fmt.Errorf("account not verified: %w", common.ErrorUnauthorized)
			return nil
		}

		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		user.LastLoginAt = &now
		if err := repo.Save(ctx, user); err != nil {
			return fmt.Errorf("error stamping last login: %w", err)
		}

		pair, err := s.generateTokenPair(ctx, user, tx)
		if err != nil {
			return err
		}

		resp = &AuthResponse{
			User:         UserDTO{ID: user.ID, Email: user.Email, Role: user.Role},
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "login failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}
	if authErr != nil {
		return nil, authErr
	}

	s.logger.Info(ctx, "login succeeded", "user_id", resp.User.ID)
	return resp, nil
}

// RefreshAccessToken validates a refresh token against both its signature
// and its stored session, then issues a new access token. The refresh token
// and its session are left untouched: this system does not rotate refresh
// tokens on use.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("invalid refresh token: %w", common.ErrorUnauthorized)
	}

	session, err := s.repomanager.Sessions(s.db).FindByTokenHash(ctx, cryptox.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("refresh token not found: %w", common.ErrorUnauthorized)
		}
		return "", common.ErrorInternal
	}

	// Expired and revoked are indistinguishable to the caller.
	if !session.IsValid(s.now()) {
		s.logger.Warn(ctx, "refresh rejected: session expired or revoked", "session_id", session.ID)
		return "", fmt.Errorf("refresh token is expired or revoked: %w", common.ErrorUnauthorized)
	}

	if claims.Subject != session.UserID {
		return "", fmt.Errorf("refresh token subject mismatch: %w", common.ErrorUnauthorized)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The account was deleted after the session was issued.
			return "", fmt.Errorf("account no longer exists: %w", common.ErrorNotFound)
		}
		return "", common.ErrorInternal
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role.String(), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return accessToken, nil
}

// Logout revokes every session owned by the account. Calling it with no
// valid sessions is a no-op, never an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.Sessions(s.db).RevokeAllByUserID(ctx, userID, s.now()); err != nil {
		s.logger.Error(ctx, "logout failed", "user_id", userID, "error", err)
		return common.ErrorInternal
	}
	s.logger.Info(ctx, "sessions revoked", "user_id", userID)
	return nil
}

// ChangePassword verifies the current secret, stores a new hash, and
// revokes all outstanding sessions so credentials derived from the old
// secret stop working.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user not found: %w", common.ErrorUnauthorized)
		}
		return common.ErrorInternal
	}

	if !cryptox.VerifyPassword(currentPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", common.ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}
	user.PasswordHash = hash

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Save(ctx, user); err != nil {
			return fmt.Errorf("error saving password: %w", err)
		}
		return s.repomanager.Sessions(tx).RevokeAllByUserID(ctx, userID, s.now())
	}); err != nil {
		s.logger.Error(ctx, "password change failed", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed, sessions revoked", "user_id", userID)
	return nil
}

// SweepExpiredSessions deletes physically expired session rows. Maintenance
// only; the app runs it on a timer, never on the login/refresh path.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "expired sessions deleted", "count", n)
	}
	return n, nil
}

// generateTokenPair mints both tokens and persists the refresh session in
// the same DBTX the caller is operating on.
func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role.String(), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	expiresAt := s.now().Add(s.refreshTokenValidityDuration)
	if _, err := s.repomanager.Sessions(tx).Create(ctx, user.ID, cryptox.HashToken(refresh), expiresAt); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
