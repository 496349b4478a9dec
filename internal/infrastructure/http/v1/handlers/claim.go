package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/claim"
	"livecart/internal/infrastructure/http/v1/dto"
)

// ClaimHandler handles claim intake endpoints.
type ClaimHandler struct {
	*BaseHandler
	service *claim.Service
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(base *BaseHandler, service *claim.Service) *ClaimHandler {
	return &ClaimHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Import handles POST /sessions/:id/claims
func (h *ClaimHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ImportClaimsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, err)
		return
	}

	claims, err := h.service.ImportBatch(ctx, sessionID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(claims, len(claims)))
}

// ListBySession handles GET /sessions/:id/claims
func (h *ClaimHandler) ListBySession(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	claims, err := h.service.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(claims, len(claims)))
}

// SetStatus handles PUT /claims/:id/status
func (h *ClaimHandler) SetStatus(c *gin.Context) {
	claimID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetClaimStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cl, err := h.service.SetStatus(c.Request.Context(), claimID, claim.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cl)
}
