package middleware

import (
	"log/slog"
	"strings"

	"Restore/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set for signed in callers.
const (
	KeyUserID = "UserID"
	KeyEmail  = "Email"
	KeyRole   = "Role"
	KeyToken  = "Token"
)

// AuthMiddleware identifies the caller from the identity cookie, or from an
// Authorization bearer token. Missing or invalid tokens leave the request
// anonymous.
func AuthMiddleware(db *gorm.DB, signer *jwt.Signer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.Next()
			return
		}

		identity, err := signer.VerifyToken(token, db)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "ignoring identity token", "error", err)
			c.Next()
			return
		}

		c.Set(KeyToken, token)
		c.Set(KeyUserID, identity.UserID)
		c.Set(KeyEmail, identity.Email)
		c.Set(KeyRole, identity.Role)
		c.Next()
	}
}

// CurrentIdentity returns the caller set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (jwt.Identity, bool) {
	userID, ok := c.Get(KeyUserID)
	if !ok {
		return jwt.Identity{}, false
	}
	return jwt.Identity{
		UserID: userID.(uint),
		Email:  c.GetString(KeyEmail),
		Role:   c.GetString(KeyRole),
	}, true
}
