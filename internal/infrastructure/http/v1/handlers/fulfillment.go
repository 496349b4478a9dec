package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/fulfillment"
)

// FulfillmentHandler exposes the claim-to-order engine.
type FulfillmentHandler struct {
	*BaseHandler
	service *fulfillment.Service
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(base *BaseHandler, service *fulfillment.Service) *FulfillmentHandler {
	return &FulfillmentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Build handles POST /sessions/:id/build-orders
// Converts the session's accepted claims into orders. Safe to re-run.
func (h *FulfillmentHandler) Build(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.BuildOrdersFromClaims(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Sync handles POST /sessions/:id/sync-orders
// Reconciles unpaid orders against the session's current accepted claims.
func (h *FulfillmentHandler) Sync(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	affected, err := h.service.SyncUnpaidOrdersForSession(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"ordersAffected": affected})
}
