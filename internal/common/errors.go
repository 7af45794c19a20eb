// Package common defines shared constants and sentinel errors used across
// authcore components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrInvalidCredentials covers a bad email/password pair and every
	// refresh-token validation failure. Absent, revoked and expired tokens
	// are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail is returned on registration with an email that is
	// already taken (case-insensitive).
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidToken covers malformed, expired and badly signed access
	// tokens as a single opaque outcome.
	ErrInvalidToken = errors.New("invalid token")

	// ErrIssuanceFailed is returned when refresh-token issuance exhausts its
	// collision-retry budget.
	ErrIssuanceFailed = errors.New("token issuance failed")

	// ErrForbidden is returned when the authenticated principal's role is
	// insufficient for the requested operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidArgument is returned when request data fails domain
	// validation.
	ErrInvalidArgument = errors.New("invalid argument")
)
