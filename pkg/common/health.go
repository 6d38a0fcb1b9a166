package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	healthOK       = "healthy"
	healthDown     = "unhealthy"
	healthDisabled = "disabled"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheckWithDeps reports 503 when any dependency check fails. A nil
// check marks an optional dependency that is switched off.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:  healthOK,
			Service: serviceName,
			Version: version,
			Checks:  make(map[string]string, len(checks)),
		}

		for name, check := range checks {
			if check == nil {
				resp.Checks[name] = healthDisabled
				continue
			}
			if err := check(); err != nil {
				resp.Checks[name] = healthDown + ": " + err.Error()
				resp.Status = healthDown
				continue
			}
			resp.Checks[name] = healthOK
		}

		code := http.StatusOK
		if resp.Status == healthDown {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
