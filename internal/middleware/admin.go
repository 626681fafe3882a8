package middleware

import (
	"net/http"

	"github.com/fundgate/fundgate/internal/config"
	"github.com/gin-gonic/gin"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware gates the transport layer for admin routes. The engine
// still verifies the request sender against the configured fund admin;
// this only keeps strangers off the endpoints.
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.AdminKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin key not configured"})
			c.Abort()
			return
		}
		if c.GetHeader(HeaderAdminKey) != cfg.Auth.AdminKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
