package middleware

import (
	"net/http"

	"Restore/problem"

	"github.com/gin-gonic/gin"
)

// CheckLoginMiddleware stops anonymous requests.
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(KeyUserID); !exists {
			problem.Abort(c, http.StatusUnauthorized, "Unauthorized", "You are not signed in")
			return
		}
		c.Next()
	}
}
