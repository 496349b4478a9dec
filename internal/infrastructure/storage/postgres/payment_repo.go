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
	"livecart/internal/domain/payment"
)

const paymentsTable = "payments"

// PaymentRepo implements payment.Repository. The table is append-only;
// Update only ever flips POSTED to VOIDED.
type PaymentRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ payment.Repository = (*PaymentRepo)(nil)

// NewPaymentRepo creates a payment repository.
func NewPaymentRepo(txManager *TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[payment.Payment](),
	}
}

// Create inserts a payment.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	sql, args, err := r.builder.Insert(paymentsTable).
		SetMap(StructToMap(p)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p payment.Payment
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("payment", paymentID)
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// Update persists a status flip.
func (r *PaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	sql, args, err := r.builder.Update(paymentsTable).
		Set("status", p.Status).
		Set("voided_at", p.VoidedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", p.ID)
	}
	return nil
}

// ListByOrder returns an order's payments, oldest first.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]payment.Payment, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(paymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("date ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var payments []payment.Payment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
