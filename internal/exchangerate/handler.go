package exchangerate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/shopspring/decimal"
)

// SnapshotReader is the part of Cache the handler needs
type SnapshotReader interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Handler serves the rate table over HTTP
type Handler struct {
	rates     SnapshotReader
	converter *Converter
}

// NewHandler creates a new exchange rate handler
func NewHandler(rates SnapshotReader, converter *Converter) *Handler {
	return &Handler{rates: rates, converter: converter}
}

// ConvertResponse is the API response for a conversion
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	Converted decimal.Decimal `json:"converted"`
	To        string          `json:"to"`
}

// GetRates returns the current rate table
func (h *Handler) GetRates(c *gin.Context) {
	snap, err := h.rates.Snapshot(c.Request.Context())
	if err != nil {
		common.AppErrorResponse(c, ToAppError(err))
		return
	}
	common.SuccessResponse(c, ToSnapshotResponse(snap))
}

// Convert converts ?amount= from ?from= to ?to=
func (h *Handler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || amount.IsNegative() {
		common.ErrorResponse(c, http.StatusBadRequest, "amount must be a non-negative decimal")
		return
	}
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))

	converted, err := h.converter.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		common.AppErrorResponse(c, ToAppError(err))
		return
	}

	common.SuccessResponse(c, ConvertResponse{
		Amount:    amount,
		From:      from,
		Converted: converted,
		To:        to,
	})
}

// ToAppError maps cache and converter errors to HTTP-aware errors
func ToAppError(err error) *common.AppError {
	switch {
	case errors.Is(err, ErrUnsupportedCurrency):
		return common.NewBadRequestError(err.Error(), err)
	case errors.Is(err, ErrRateUnavailable):
		return common.NewServiceUnavailableError("exchange rates are temporarily unavailable", err)
	default:
		return common.NewInternalServerError("failed to read exchange rates", err)
	}
}

// RegisterRoutes registers exchange rate routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", h.GetRates)
		rates.GET("/convert", h.Convert)
	}
}
