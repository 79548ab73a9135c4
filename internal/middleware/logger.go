package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
)

// quietRoutes are polled by infrastructure and logged at debug.
var quietRoutes = map[string]bool{
	"/metrics":     true,
	"/api/healthz": true,
}

func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		case quietRoutes[c.FullPath()]:
			event = log.Debug()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", RequestIDFrom(c))

		// The session store is only present on page routes.
		if v, ok := c.Get(sessionStoreKey); ok {
			if user, signedIn := v.(*session.Store).CurrentUser(); signedIn {
				event = event.Str("user_id", user.ID).Str("role", string(user.Role))
			}
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("http request")
	}
}
