package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/shipment"
	"livecart/internal/infrastructure/http/v1/dto"
)

// ShipmentHandler handles shipment endpoints.
type ShipmentHandler struct {
	*BaseHandler
	service *shipment.Service
}

// NewShipmentHandler creates a new shipment handler.
func NewShipmentHandler(base *BaseHandler, service *shipment.Service) *ShipmentHandler {
	return &ShipmentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Upsert handles PUT /orders/:id/shipment
// Creates or updates the single shipment attached to an order.
func (h *ShipmentHandler) Upsert(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ShipmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateOrUpdate(c.Request.Context(), orderID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// GetByOrder handles GET /orders/:id/shipment
func (h *ShipmentHandler) GetByOrder(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sh, err := h.service.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sh)
}

// List handles GET /shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var query dto.ListShipmentsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	var status *shipment.Status
	if query.Status != "" {
		st := shipment.Status(query.Status)
		status = &st
	}

	shipments, err := h.service.List(c.Request.Context(), status, query.Limit, query.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(shipments, len(shipments)))
}

// SetStatus handles PUT /shipments/:id/status
// Courier status changes may cascade to the order's status.
func (h *ShipmentHandler) SetStatus(c *gin.Context) {
	shipmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetShipmentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), shipmentID, shipment.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
