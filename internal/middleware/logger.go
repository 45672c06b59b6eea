package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger returns a middleware that logs HTTP requests. It must run after
// RequestID so the id is available.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		var msg string
		switch {
		case status >= 500:
			event, msg = log.Error(), "Server error"
		case status >= 400:
			event, msg = log.Warn(), "Client error"
		default:
			event, msg = log.Info(), "Request processed"
		}

		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
