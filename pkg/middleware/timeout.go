package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/common"
)

// RequestTimeout bounds every request to d. A non-positive d disables it.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			common.ErrorResponse(c, http.StatusGatewayTimeout, "request timed out")
		}),
	)
}
