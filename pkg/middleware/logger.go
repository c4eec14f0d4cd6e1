package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the auth layer uses to expose the caller id.
const UserIDKey = "userId"

// RequestLogger logs 4xx responses at Warn and 5xx at Error. Successful requests are left to metrics.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status < 400 {
			return
		}

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if userID, ok := c.Get(UserIDKey); ok {
			attrs = append(attrs, slog.Any("user_id", userID))
		}

		level, msg := slog.LevelWarn, "http_request_warning"
		if status >= 500 {
			level, msg = slog.LevelError, "http_request_error"
		}
		logger.LogAttrs(c.Request.Context(), level, msg, attrs...)
	}
}
