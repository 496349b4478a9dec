package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/customer"
	"livecart/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /customers
// Returns the customer overview with aggregated purchase stats.
func (h *CustomerHandler) List(c *gin.Context) {
	var query dto.ListCustomersQuery
	if !h.BindQuery(c, &query) {
		return
	}

	customers, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(customers, len(customers)))
}

// Get handles GET /customers/:id
// Returns the customer with order history and flagged claims.
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.GetWithHistory(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, history)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(cust)
	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// RecomputeStats handles POST /customers/:id/recompute
// Rebuilds the aggregated stats from the customer's orders and claims.
func (h *CustomerHandler) RecomputeStats(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RecomputeStats(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}
