package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/richxcame/fundraising/pkg/logger"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 envelope. The panic is logged
// with the correlation id and forwarded to sentry when a hub is attached.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithContext(c.Request.Context()).Error("handler panicked",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("route", c.FullPath()),
				zap.String("method", c.Request.Method),
				zap.Stack("stack"),
			)
			if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
				hub.RecoverWithContext(c.Request.Context(), rec)
			}

			if !c.Writer.Written() {
				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
			c.Abort()
		}()

		c.Next()
	}
}
