package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs every request once it completes
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := redactQuery(c.Request.URL.Query()); raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Int64("userID", c.GetInt64(ContextUserID)).
			Msg("Request")
	}
}

// Query parameters that carry credentials, see JWTAuth
var redactedParams = []string{"token"}

func redactQuery(query url.Values) string {
	for _, name := range redactedParams {
		if query.Has(name) {
			query.Set(name, "REDACTED")
		}
	}
	return query.Encode()
}
