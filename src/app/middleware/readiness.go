package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"profileapi/src/app/http/response"
	"profileapi/src/core/domain"
	"profileapi/src/core/ports"
)

// ReadinessGate proves the database can lend a connection before any
// non-exempt request reaches its handler. The connection is borrowed and
// released immediately; on failure the request ends with 503 and the reason.
//
// Exempt paths bypass the gate entirely so liveness stays observable during
// an outage.
//
// Usage:
//
//	router.Use(middleware.ReadinessGate(pool, cfg.Database.AcquireTimeout, log, "/api/health"))
func ReadinessGate(pool ports.ConnectionPool, timeout time.Duration, log *slog.Logger, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), timeout)
		err := pool.Ready(ctx)
		cancel()
		if err != nil {
			reason := domain.UnavailableReason(err)
			if reason == "" {
				reason = domain.ReasonConnectFailed
			}
			log.Warn("readiness gate rejected request",
				"request_id", GetRequestID(c),
				"path", c.Request.URL.Path,
				"reason", reason,
				"error", err,
			)
			response.Unavailable(c, reason)
			return
		}

		c.Next()
	}
}
