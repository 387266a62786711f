package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const correlationHeader = "X-Correlation-ID"

// CorrelationMiddleware reads X-Correlation-ID, generating one if the client
// didn't send it, and attaches a request-scoped logger to the context.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Header(correlationHeader, correlationID)

		logger := log.With().Str("correlation_id", correlationID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequestLogger writes one structured access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Ctx(c.Request.Context()).Info()
		if status >= 500 {
			event = log.Ctx(c.Request.Context()).Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
