// Package common defines shared constants and sentinel errors used across
// client and server layers of StudentHub. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("not authorized")

	// Transport errors seen by the client. Any network failure, non-success
	// response or malformed body collapses into ErrUnavailable.
	ErrUnavailable = errors.New("server unavailable")

	// Reset token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)
