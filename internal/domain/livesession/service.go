package livesession

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
)

// Service manages the session catalog.
type Service struct {
	repo Repository
}

// NewService creates a live session service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a scheduled session.
func (s *Service) Create(ctx context.Context, title string, platform Platform) (*Session, error) {
	session := NewSession(title, platform)
	if err := session.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetByID returns a session.
func (s *Service) GetByID(ctx context.Context, sessionID id.ID) (*Session, error) {
	return s.repo.GetByID(ctx, sessionID)
}

// List returns sessions, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Session, error) {
	return s.repo.List(ctx, limit, offset)
}

// Start moves a scheduled session to LIVE and stamps StartedAt.
func (s *Service) Start(ctx context.Context, sessionID id.ID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusScheduled {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "only a scheduled session can start").
			WithDetail("status", string(session.Status))
	}
	now := time.Now().UTC()
	session.Status = StatusLive
	session.StartedAt = &now
	session.UpdatedAt = now
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// End moves a live session to ENDED and stamps EndedAt.
func (s *Service) End(ctx context.Context, sessionID id.ID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusLive {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "only a live session can end").
			WithDetail("status", string(session.Status))
	}
	now := time.Now().UTC()
	session.Status = StatusEnded
	session.EndedAt = &now
	session.UpdatedAt = now
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
