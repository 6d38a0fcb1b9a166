package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fundraising/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request identifier in both directions.
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key holding the identifier.
	CorrelationIDKey = "correlation_id"

	maxCorrelationIDLen = 128
)

// CorrelationID reuses a caller supplied identifier or mints a UUID, then
// exposes it to handlers, the request context logger and the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" || len(id) > maxCorrelationIDLen {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		ctx := logger.ContextWithCorrelationID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCorrelationID returns the identifier set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}
