package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/infrastructure/http/v1/dto"
	"livecart/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the audit trail for troubleshooting.
type AuditHandler struct {
	*BaseHandler
	store *postgres.AuditStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, store *postgres.AuditStore) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		store:       store,
	}
}

// ListByEntity handles GET /audit/:entityType/:id
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)
	entries, err := h.store.ListByEntity(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(entries, len(entries)))
}
