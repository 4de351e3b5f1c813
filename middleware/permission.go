package middleware

import (
	"net/http"

	"Restore/problem"

	"github.com/gin-gonic/gin"
)

// CheckRoleMiddleware stops callers without role. Chain it after
// CheckLoginMiddleware.
func CheckRoleMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != role {
			problem.Abort(c, http.StatusForbidden, "Forbidden", "You are not allowed to do that")
			return
		}
		c.Next()
	}
}
