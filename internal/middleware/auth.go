package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "servicehub/internal/pkg/jwt"
	"servicehub/internal/pkg/response"
)

// AuthRequired validates the Bearer token and stores user_id and role
// in the gin context for downstream handlers.
func AuthRequired(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing or malformed Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole ensures the authenticated user carries one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Role not found in token")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.AbortError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}
