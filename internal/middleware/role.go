package middleware

import (
	"net/http"

	jwtsvc "bizdir/internal/pkg/jwt"
	"bizdir/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated caller has the specified role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.ErrorWithMessage(c, http.StatusUnauthorized, "Unauthorized", "Role not found in token")
			c.Abort()
			return
		}

		if r, _ := role.(string); r != requiredRole {
			response.ErrorWithMessage(c, http.StatusForbidden, "Forbidden", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly chains token validation and the admin role check. With a nil
// service both are skipped.
func AdminOnly(jwt *jwtsvc.Service) []gin.HandlerFunc {
	if jwt == nil {
		return nil
	}
	return []gin.HandlerFunc{JWTAuth(jwt), RequireRole(jwtsvc.RoleAdmin)}
}
