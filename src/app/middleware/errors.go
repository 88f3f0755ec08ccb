package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"profileapi/src/app/http/response"
)

// ErrorHandler is the last-resort translation for errors handlers attached
// with c.Error but did not answer themselves. The errors are logged; the
// client only sees the generic message.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			log.Error("unhandled request error",
				"request_id", GetRequestID(c),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", e.Err,
			)
		}

		if !c.Writer.Written() {
			response.Fallback(c)
		}
	}
}
