package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/security"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/session"
)

const bearerPrefix = "bearer "

// ClaimsKey is the gin context key holding the validated *security.SessionClaims.
const ClaimsKey = "session.claims"

// Auth rejects requests without a valid session token. The token is read from the Authorization
// bearer header first, then from the session cookie.
func Auth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			if v, err := c.Cookie(session.CookieName); err == nil {
				token = v
			}
		}
		if token == "" {
			httpapi.Unauthorized(c, "missing or invalid authorization")
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			httpapi.Unauthorized(c, "missing or invalid authorization")
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
