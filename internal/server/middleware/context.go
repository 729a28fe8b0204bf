package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
)

// ClientIP stores the caller's IP in the request context so audit events can record it.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClientIP(c.Request.Context(), c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
