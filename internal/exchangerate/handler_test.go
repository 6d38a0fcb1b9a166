package exchangerate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(provider fixedProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(provider, NewConverter(provider)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func perform(r *gin.Engine, target string) (*httptest.ResponseRecorder, common.Response) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var resp common.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHandler_GetRates(t *testing.T) {
	r := setupRouter(fixedProvider{snap: &Snapshot{Base: "EUR", Rates: rates("EUR", "1", "USD", "1.087")}})

	w, resp := perform(r, "/api/v1/exchange-rates")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "EUR", data["base"])
	assert.Equal(t, "1.087", data["rates"].(map[string]interface{})["USD"])
}

func TestHandler_GetRates_Unavailable(t *testing.T) {
	r := setupRouter(fixedProvider{err: ErrRateUnavailable})

	w, resp := perform(r, "/api/v1/exchange-rates")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "exchange rates are temporarily unavailable", resp.Error.Message)
}

func TestHandler_Convert(t *testing.T) {
	r := setupRouter(fixedProvider{snap: &Snapshot{Base: "EUR", Rates: rates("EUR", "1", "GBP", "0.92")}})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"ok", "/api/v1/exchange-rates/convert?amount=100&from=EUR&to=GBP", http.StatusOK},
		{"bad amount", "/api/v1/exchange-rates/convert?amount=abc&from=EUR&to=GBP", http.StatusBadRequest},
		{"negative amount", "/api/v1/exchange-rates/convert?amount=-1&from=EUR&to=GBP", http.StatusBadRequest},
		{"unsupported", "/api/v1/exchange-rates/convert?amount=1&from=EUR&to=XXX", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform(r, tt.target)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "92", resp.Data.(map[string]interface{})["converted"])
			}
		})
	}
}
