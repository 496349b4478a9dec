package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/domain/claim"
)

const claimsTable = "claims"

// ClaimRepo implements claim.Repository. Bulk intake uses the COPY
// protocol; everything else is squirrel + pgxscan.
type ClaimRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ claim.Repository = (*ClaimRepo)(nil)

// NewClaimRepo creates a claim repository.
func NewClaimRepo(txManager *TxManager) *ClaimRepo {
	return &ClaimRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[claim.Claim](),
	}
}

// CreateBatch bulk inserts an intake batch. Uses COPY when a
// transaction is active, falling back to a multi-row INSERT.
func (r *ClaimRepo) CreateBatch(ctx context.Context, claims []claim.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	columns := []string{
		"id", "live_session_id", "inventory_item_id", "variant_id",
		"customer_id", "temporary_name", "quantity", "status",
		"joy_reserve", "created_at", "updated_at",
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(claims))
		for i := range claims {
			c := &claims[i]
			rows = append(rows, []any{
				c.ID, c.LiveSessionID, c.InventoryItemID, c.VariantID,
				c.CustomerID, c.TemporaryName, c.Quantity, c.Status,
				c.JoyReserve, c.CreatedAt, c.UpdatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, claimsTable, columns, rows); err != nil {
			return fmt.Errorf("copy claims: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(claimsTable).Columns(columns...)
	for i := range claims {
		c := &claims[i]
		q = q.Values(
			c.ID, c.LiveSessionID, c.InventoryItemID, c.VariantID,
			c.CustomerID, c.TemporaryName, c.Quantity, c.Status,
			c.JoyReserve, c.CreatedAt, c.UpdatedAt,
		)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert claims: %w", err)
	}
	return nil
}

// UpdateStatus flips a claim's status.
func (r *ClaimRepo) UpdateStatus(ctx context.Context, claimID id.ID, status claim.Status) error {
	sql, args, err := r.builder.Update(claimsTable).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": claimID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("claim", claimID)
	}
	return nil
}

// GetByID retrieves a claim by ID.
func (r *ClaimRepo) GetByID(ctx context.Context, claimID id.ID) (*claim.Claim, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(claimsTable).
		Where(squirrel.Eq{"id": claimID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c claim.Claim
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("claim", claimID)
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return &c, nil
}

// ListBySession returns every claim of a session.
func (r *ClaimRepo) ListBySession(ctx context.Context, sessionID id.ID) ([]claim.Claim, error) {
	return r.list(ctx, squirrel.Eq{"live_session_id": sessionID})
}

// ListAcceptedBySession returns the session's ACCEPTED claims.
func (r *ClaimRepo) ListAcceptedBySession(ctx context.Context, sessionID id.ID) ([]claim.Claim, error) {
	return r.list(ctx, squirrel.Eq{
		"live_session_id": sessionID,
		"status":          claim.StatusAccepted,
	})
}

func (r *ClaimRepo) list(ctx context.Context, where squirrel.Eq) ([]claim.Claim, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(claimsTable).
		Where(where).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var claims []claim.Claim
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &claims, sql, args...); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

// CountJoyReserveByCustomer counts claims explicitly flagged as
// joy-reserve for the customer.
func (r *ClaimRepo) CountJoyReserveByCustomer(ctx context.Context, customerID id.ID) (int, error) {
	sql, args, err := r.builder.Select("COUNT(*)").
		From(claimsTable).
		Where(squirrel.Eq{"customer_id": customerID, "joy_reserve": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count joy reserve claims: %w", err)
	}
	return count, nil
}

// ListJoyReserveByCustomer returns those flagged claims.
func (r *ClaimRepo) ListJoyReserveByCustomer(ctx context.Context, customerID id.ID) ([]claim.Claim, error) {
	return r.list(ctx, squirrel.Eq{"customer_id": customerID, "joy_reserve": true})
}

// SetCustomer backfills the resolved customer on a claim.
func (r *ClaimRepo) SetCustomer(ctx context.Context, claimID, customerID id.ID) error {
	sql, args, err := r.builder.Update(claimsTable).
		Set("customer_id", customerID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": claimID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set claim customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("claim", claimID)
	}
	return nil
}
