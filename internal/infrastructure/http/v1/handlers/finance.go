package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/finance"
	"livecart/internal/infrastructure/http/v1/dto"
)

// FinanceHandler handles profit reporting endpoints.
type FinanceHandler struct {
	*BaseHandler
	service *finance.Service
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(base *BaseHandler, service *finance.Service) *FinanceHandler {
	return &FinanceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Snapshot handles GET /finance/snapshot
func (h *FinanceHandler) Snapshot(c *gin.Context) {
	var query dto.RangeQuery
	if !h.BindQuery(c, &query) {
		return
	}

	r, err := query.ToRange()
	if err != nil {
		h.Error(c, err)
		return
	}

	snapshot, err := h.service.GetSnapshotForRange(c.Request.Context(), r)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, snapshot)
}

// Series handles GET /finance/series
// Returns daily net profit points for charting.
func (h *FinanceHandler) Series(c *gin.Context) {
	var query dto.RangeQuery
	if !h.BindQuery(c, &query) {
		return
	}

	r, err := query.ToRange()
	if err != nil {
		h.Error(c, err)
		return
	}

	series, err := h.service.GetNetProfitSeries(c.Request.Context(), r)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(series, len(series)))
}
