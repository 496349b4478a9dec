package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/order"
	"livecart/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles order and payment endpoints.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var query dto.ListOrdersQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(orders, len(orders)))
}

// Get handles GET /orders/:id
// Returns the order with its lines and payment ledger.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, detail)
}

// UpdateFees handles PUT /orders/:id/fees
func (h *OrderHandler) UpdateFees(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.UpdateFees(c.Request.Context(), orderID, req.ToFeeUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, o)
}

// SetStatus handles PUT /orders/:id/status
func (h *OrderHandler) SetStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.SetStatus(c.Request.Context(), orderID, order.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, o)
}

// Recalculate handles POST /orders/:id/recalculate
// Re-derives totals and payment status from lines and the ledger.
func (h *OrderHandler) Recalculate(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.RecalculateTotals(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, o)
}

// RecordPayment handles POST /orders/:id/payments
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), orderID, req.ToPaymentInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// VoidPayment handles POST /payments/:id/void
func (h *OrderHandler) VoidPayment(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.VoidPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
