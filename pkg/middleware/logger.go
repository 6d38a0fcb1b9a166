package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Server errors log at error
// level, client errors at warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		reqLogger := logger.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			reqLogger.Error("request failed", fields...)
		case status >= 400:
			reqLogger.Warn("request rejected", fields...)
		default:
			reqLogger.Info("request completed", fields...)
		}
	}
}
