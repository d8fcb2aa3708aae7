package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth.
const (
	CtxUserID  = "auth_user_id"
	CtxName    = "auth_name"
	CtxIsAdmin = "auth_is_admin"
)

// RequireAuth rejects requests without a valid bearer token and stashes
// the caller's identity in the Gin context.
func RequireAuth(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}
		claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxName, claims.Name)
		c.Set(CtxIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth and rejects non-staff callers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_only"})
			return
		}
		c.Next()
	}
}

// Identity reads the caller set by RequireAuth.
func Identity(c *gin.Context) (userID, name string, isAdmin bool) {
	return c.GetString(CtxUserID), c.GetString(CtxName), c.GetBool(CtxIsAdmin)
}
