package auth

import "context"

// Role is an authorization tier. Roles map 1:1 to authorities in verifying
// services.
type Role string

const (
	// RoleAdmin manages users and devices platform-wide.
	RoleAdmin Role = "ADMIN"

	// RoleClient is the default non-privileged account role.
	RoleClient Role = "CLIENT"
)

// ValidRoles lists every role an account may hold.
var ValidRoles = []Role{RoleAdmin, RoleClient}

// IsValidRole reports whether r is a known account role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Principal is the authenticated identity derived from a verified access
// token. It lives for one request and is never persisted.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a child context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached to the context, or nil
// when the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok {
		return nil
	}
	return p
}
