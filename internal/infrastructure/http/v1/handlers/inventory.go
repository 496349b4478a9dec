package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/inventory"
	"livecart/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles inventory item endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /inventory/items
func (h *InventoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := req.ToItem()
	if err := h.service.Create(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item.ID.String())
}

// Get handles GET /inventory/items/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Update handles PUT /inventory/items/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(item)
	if err := h.service.Update(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// List handles GET /inventory/items
func (h *InventoryHandler) List(c *gin.Context) {
	var query dto.ListItemsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	items, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, len(items)))
}

// LowStock handles GET /inventory/items/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, len(items)))
}

// AdjustStock handles POST /inventory/items/:id/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AdjustStock(ctx, itemID, req.ToDelta())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}
