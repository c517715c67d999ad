package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mechbook/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if role.(string) != requiredRole {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole("admin")
}

// MechanicOnly middleware requires mechanic role
func MechanicOnly() gin.HandlerFunc {
	return RequireRole("mechanic")
}

// CustomerOnly middleware requires customer role
func CustomerOnly() gin.HandlerFunc {
	return RequireRole("customer")
}
