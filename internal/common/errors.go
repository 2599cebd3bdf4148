// Package common defines shared constants and sentinel errors used across
// the LINKT platform layers. Callers should use errors.Is to match these
// values; the HTTP boundary maps them to response statuses.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration errors.
	ErrDuplicateEmail          = errors.New("email already exists")
	ErrWeakPassword            = errors.New("password must be at least 7 characters")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrMissingOrganizationName = errors.New("organization name is required for organizers")

	// Login / verification errors.
	ErrBadCredentials       = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrUserNotFound         = errors.New("user not found")

	// Scan-path fatal errors. Note these are caller errors, not scan
	// outcomes: the four ticket-state outcomes travel as data.
	ErrEventNotFound = errors.New("event not found")
	ErrActorNotFound = errors.New("scanning user not found")

	// Ticketing errors.
	ErrEventSoldOut = errors.New("event is sold out")

	// Auth token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
