package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/domain/livesession"
)

const liveSessionsTable = "live_sessions"

// LiveSessionRepo implements livesession.Repository.
type LiveSessionRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ livesession.Repository = (*LiveSessionRepo)(nil)

// NewLiveSessionRepo creates a live session repository.
func NewLiveSessionRepo(txManager *TxManager) *LiveSessionRepo {
	return &LiveSessionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[livesession.Session](),
	}
}

// Create inserts a new session.
func (r *LiveSessionRepo) Create(ctx context.Context, session *livesession.Session) error {
	sql, args, err := r.builder.Insert(liveSessionsTable).
		SetMap(StructToMap(session)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID.
func (r *LiveSessionRepo) GetByID(ctx context.Context, sessionID id.ID) (*livesession.Session, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(liveSessionsTable).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var session livesession.Session
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &session, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("live session", sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Update persists session changes with optimistic locking.
func (r *LiveSessionRepo) Update(ctx context.Context, session *livesession.Session) error {
	currentVersion := session.Version
	session.Version++

	values := StructToMap(session)
	delete(values, "id")
	delete(values, "created_at")

	sql, args, err := r.builder.Update(liveSessionsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": session.ID, "version": currentVersion}).
		ToSql()
	if err != nil {
		session.Version = currentVersion
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		session.Version = currentVersion
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		session.Version = currentVersion
		return apperror.NewConcurrentModification("live session", session.ID)
	}
	return nil
}

// List returns sessions, newest first.
func (r *LiveSessionRepo) List(ctx context.Context, limit, offset int) ([]livesession.Session, error) {
	q := r.builder.Select(r.columns...).
		From(liveSessionsTable).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sessions []livesession.Session
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &sessions, sql, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
