package models

import "time"

// User is the account credential record. Email is immutable after creation,
// Role after registration. PasswordHash, the lockout fields, and LastLoginAt
// are the only columns this core mutates.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	Role                Role
	IsVerified          bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
}

// IsLocked reports whether the account lock is still in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockExpired reports whether a lock exists but has already elapsed; the
// next access is expected to reset the counter before evaluating anything
// (lazy expiry, no sweeper).
func (u *User) LockExpired(now time.Time) bool {
	return u.LockedUntil != nil && !now.Before(*u.LockedUntil)
}
