// Package livesession provides the live session catalog. Sessions group
// claims and orders and carry the platform used for finance filtering.
package livesession

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
)

// Platform identifies the streaming platform a session ran on.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformShopee    Platform = "shopee"
)

// Status of a live session.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusEnded     Status = "ENDED"
)

// Session represents one live-selling stream.
type Session struct {
	ID        id.ID      `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Platform  Platform   `db:"platform" json:"platform"`
	Status    Status     `db:"status" json:"status"`
	StartedAt *time.Time `db:"started_at" json:"startedAt,omitempty"`
	EndedAt   *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	Version   int        `db:"version" json:"version"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewSession creates a scheduled session.
func NewSession(title string, platform Platform) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id.New(),
		Title:     title,
		Platform:  platform,
		Status:    StatusScheduled,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks session invariants.
func (s *Session) Validate(ctx context.Context) error {
	if s.Title == "" {
		return apperror.NewValidation("session title is required").
			WithDetail("field", "title")
	}
	switch s.Platform {
	case PlatformFacebook, PlatformTikTok, PlatformInstagram, PlatformShopee:
	default:
		return apperror.NewValidation("unknown platform").
			WithDetail("field", "platform").
			WithDetail("value", string(s.Platform))
	}
	return nil
}

// Repository defines persistence operations for live sessions.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, sessionID id.ID) (*Session, error)
	Update(ctx context.Context, session *Session) error
	List(ctx context.Context, limit, offset int) ([]Session, error)
}
