package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger returns a middleware that writes one access log line per request.
// Request bodies are never logged; they carry patient data.
func Logger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = base.Error()
		case status >= 400:
			event = base.Warn()
		default:
			event = base.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("request_id", RequestIDFrom(c)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request processed")
	}
}
