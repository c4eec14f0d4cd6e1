package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// Recovery turns panics into a 500 envelope and logs the stack.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(c)),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.Any("panic", recovered),
					slog.String("stack", string(debug.Stack())),
				)

				if !c.Writer.Written() {
					response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
