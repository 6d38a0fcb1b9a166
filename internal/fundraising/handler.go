package fundraising

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/richxcame/fundraising/pkg/middleware"
	"github.com/shopspring/decimal"
)

// Handler handles HTTP requests for collection boxes and fundraising events
type Handler struct {
	boxes  *BoxService
	events *EventService
}

// NewHandler creates a new fundraising handler
func NewHandler(boxes *BoxService, events *EventService) *Handler {
	return &Handler{boxes: boxes, events: events}
}

// CreateEvent creates a fundraising event
func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	event, err := h.events.Create(c.Request.Context(), req.Name, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, event)
}

// GetEvent returns a fundraising event
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id", "fundraising event")
	if !ok {
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, event)
}

// GetFinancialReport lists every event with its balance
func (h *Handler) GetFinancialReport(c *gin.Context) {
	report, err := h.events.FinancialReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, report)
}

// RegisterBox registers a new collection box
func (h *Handler) RegisterBox(c *gin.Context) {
	box, err := h.boxes.Register(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, box)
}

// ListBoxes lists collection boxes without their amounts
func (h *Handler) ListBoxes(c *gin.Context) {
	boxes, err := h.boxes.ListSummaries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, boxes)
}

// GetBox returns a collection box
func (h *Handler) GetBox(c *gin.Context) {
	id, ok := pathID(c, "id", "collection box")
	if !ok {
		return
	}

	box, err := h.boxes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, box)
}

// UnregisterBox removes a collection box
func (h *Handler) UnregisterBox(c *gin.Context) {
	id, ok := pathID(c, "id", "collection box")
	if !ok {
		return
	}

	if err := h.boxes.Unregister(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignBox assigns a collection box to a fundraising event
func (h *Handler) AssignBox(c *gin.Context) {
	boxID, ok := pathID(c, "id", "collection box")
	if !ok {
		return
	}
	eventID, ok := pathID(c, "eventId", "fundraising event")
	if !ok {
		return
	}

	box, err := h.boxes.Assign(c.Request.Context(), boxID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, box)
}

// Deposit puts money into a collection box
func (h *Handler) Deposit(c *gin.Context) {
	id, ok := pathID(c, "id", "collection box")
	if !ok {
		return
	}

	var req DepositRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}
	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}

	box, err := h.boxes.Deposit(c.Request.Context(), id, req.Currency, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, box)
}

// EmptyBox transfers a collection box's money to its fundraising event
func (h *Handler) EmptyBox(c *gin.Context) {
	id, ok := pathID(c, "id", "collection box")
	if !ok {
		return
	}

	box, err := h.boxes.Empty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, box)
}

// RegisterRoutes registers fundraising routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/fundraising-events")
	{
		events.POST("", h.CreateEvent)
		events.GET("/report", h.GetFinancialReport)
		events.GET("/:id", h.GetEvent)
	}

	boxes := rg.Group("/collection-boxes")
	{
		boxes.POST("", h.RegisterBox)
		boxes.GET("", h.ListBoxes)
		boxes.GET("/:id", h.GetBox)
		boxes.DELETE("/:id", h.UnregisterBox)
		boxes.PUT("/:id/assign/:eventId", h.AssignBox)
		boxes.PUT("/:id/deposit", h.Deposit)
		boxes.PUT("/:id/empty", h.EmptyBox)
	}
}

func pathID(c *gin.Context, param, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid "+entity+" id")
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	_ = c.Error(err)
	common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
}
