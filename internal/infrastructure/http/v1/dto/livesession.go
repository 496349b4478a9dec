package dto

import "livecart/internal/domain/livesession"

// CreateSessionRequest represents a request to schedule a live session.
type CreateSessionRequest struct {
	Title    string `json:"title" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

// ToPlatform converts the raw platform value.
func (r *CreateSessionRequest) ToPlatform() livesession.Platform {
	return livesession.Platform(r.Platform)
}
