package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminKeyHeader carries the platform key for account administration
const AdminKeyHeader = "X-Admin-Key"

// RequireRole allows the request only when the authenticated user holds one
// of the given roles
func RequireRole(log *zap.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			if log != nil {
				log.Warn("Role check failed",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.Strings("required_any", roles),
					zap.String("path", c.Request.URL.Path))
			}
			abortWithCode(c, http.StatusForbidden, "FORBIDDEN", "Your role does not allow this action")
			return
		}
		c.Next()
	}
}

// RequireAdminKey guards platform routes with a shared key. An empty key
// disables the routes entirely.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			abortWithCode(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abortWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid admin key")
			return
		}
		c.Next()
	}
}
