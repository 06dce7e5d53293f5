// Package common defines shared constants and sentinel errors used across
// the token service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrConflict reports an optimistic transaction that lost to a concurrent writer.
	ErrConflict = errors.New("transaction conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Configuration errors, fatal at startup.
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidConfig   = errors.New("invalid config")

	// Auth errors (bad signature, malformed structure or claim-level expiry).
	ErrInvalidToken = errors.New("invalid token")

	// Refresh token lifecycle errors.
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrDuplicateID   = errors.New("duplicate rotation id")
)
