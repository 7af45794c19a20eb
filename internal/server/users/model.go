// Package users holds the user directory repository and the auth
// orchestrator composing password verification, access-token minting and the
// refresh-token lifecycle into the register/login/refresh/logout use cases.
package users

import (
	"time"

	"github.com/gridmesh/authcore/internal/auth"
)

// User is one account row in the directory. Emails are stored lower-cased;
// uniqueness is case-insensitive.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}
