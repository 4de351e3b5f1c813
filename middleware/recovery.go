package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"Restore/problem"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 problem. The stack is only sent to the
// client in development.
func Recovery(logger *slog.Logger, development bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		stack := string(debug.Stack())
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
			"rid", c.GetString(KeyRequestID),
		)

		title, detail := "Server Error", "Internal server error"
		if development {
			title, detail = fmt.Sprint(recovered), stack
		}
		problem.Abort(c, http.StatusInternalServerError, title, detail)
	})
}
