// Package common defines shared constants and sentinel errors used across
// the JobPortal auth core. Callers should use errors.Is to match these
// values; services wrap them with context for server-side logs while the
// sentinel stays the boundary contract.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation / request-shape errors.
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors (invalid, malformed, or expired token — deliberately a
	// single sentinel so the boundary never reveals which check failed).
	ErrInvalidToken = errors.New("invalid token")
)
