package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/finance"
	"livecart/internal/domain/payment"
)

// FinanceRepo implements finance.Repository with read-only joins over
// the order book.
type FinanceRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ finance.Repository = (*FinanceRepo)(nil)

// NewFinanceRepo creates a finance repository.
func NewFinanceRepo(txManager *TxManager) *FinanceRepo {
	return &FinanceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListOrdersInRange returns orders created inside the range joined with
// their session, optionally narrowed to one platform.
func (r *FinanceRepo) ListOrdersInRange(ctx context.Context, rng finance.Range) ([]finance.OrderRow, error) {
	q := r.builder.Select(
		"o.id",
		"o.live_session_id",
		"s.title AS session_title",
		"s.platform",
		"o.status",
		"o.payment_status",
		"o.amount_paid",
		"o.grand_total",
		"o.shipping_fee",
		"o.cod_fee",
		"o.other_fees",
		"o.created_at",
	).
		From(ordersTable + " o").
		Join(liveSessionsTable + " s ON s.id = o.live_session_id").
		Where(squirrel.GtOrEq{"o.created_at": rng.From}).
		Where(squirrel.Lt{"o.created_at": rng.To}).
		OrderBy("o.created_at ASC")

	if rng.Platform != nil {
		q = q.Where(squirrel.Eq{"s.platform": *rng.Platform})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []finance.OrderRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list finance orders: %w", err)
	}
	return rows, nil
}

// ListLinesForOrders returns lines of the given orders joined with item
// name, cost and variants.
func (r *FinanceRepo) ListLinesForOrders(ctx context.Context, orderIDs []id.ID) ([]finance.LineRow, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.builder.Select(
		"l.order_id",
		"l.inventory_item_id",
		"l.variant_id",
		"i.name AS item_name",
		"i.cost_price AS item_cost",
		"i.variants",
		"l.quantity",
		"l.line_total",
	).
		From(orderLinesTable + " l").
		Join(inventoryTable + " i ON i.id = l.inventory_item_id").
		Where(squirrel.Eq{"l.order_id": orderIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []finance.LineRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list finance lines: %w", err)
	}
	return rows, nil
}

// SumPostedPaymentsInRange sums POSTED payments dated inside the range.
func (r *FinanceRepo) SumPostedPaymentsInRange(ctx context.Context, from, to time.Time) (types.MinorUnits, error) {
	sql, args, err := r.builder.Select("COALESCE(SUM(amount), 0)").
		From(paymentsTable).
		Where(squirrel.Eq{"status": payment.StatusPosted}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var sum types.MinorUnits
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("sum posted payments: %w", err)
	}
	return sum, nil
}
