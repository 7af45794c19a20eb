package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gridmesh/authcore/internal/common"
)

// extractBearerToken pulls the token out of an Authorization header value.
// Returns an empty string for a missing or malformed header.
func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, common.BearerPrefix)
}

// Middleware verifies a bearer credential, if one is present, and attaches
// the resulting Principal to the request context. An absent, malformed or
// invalid token lets the request proceed unauthenticated; per-route
// authorization (RequireAuth, RequireRole) decides whether to reject.
func Middleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearerToken(c.GetHeader(common.AuthorizationHeader))
		if raw != "" {
			if p, err := v.Verify(raw); err == nil {
				c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
			}
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 when no principal was derived for the request.
// Must run after Middleware.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFromContext(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 401 for anonymous requests and 403 when the
// principal holds none of the allowed roles. Must run after Middleware.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFromContext(c.Request.Context())
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
