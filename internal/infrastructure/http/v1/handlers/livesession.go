package handlers

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/livesession"
	"livecart/internal/infrastructure/http/v1/dto"
)

// SessionHandler handles live session endpoints.
type SessionHandler struct {
	*BaseHandler
	service *livesession.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *BaseHandler, service *livesession.Service) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Create(c.Request.Context(), req.Title, req.ToPlatform())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, session.ID.String())
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	session, err := h.service.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// List handles GET /sessions
func (h *SessionHandler) List(c *gin.Context) {
	var query dto.PageRequest
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	sessions, err := h.service.List(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(sessions, len(sessions)))
}

// Start handles POST /sessions/:id/start
func (h *SessionHandler) Start(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	session, err := h.service.Start(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// End handles POST /sessions/:id/end
func (h *SessionHandler) End(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	session, err := h.service.End(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}
