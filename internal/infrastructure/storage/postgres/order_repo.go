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
	"livecart/internal/domain/order"
)

const (
	ordersTable     = "orders"
	orderLinesTable = "order_lines"
)

// OrderRepo implements order.Repository for orders and their lines.
type OrderRepo struct {
	txManager   *TxManager
	builder     squirrel.StatementBuilderType
	columns     []string
	lineColumns []string
}

var _ order.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository.
func NewOrderRepo(txManager *TxManager) *OrderRepo {
	return &OrderRepo{
		txManager:   txManager,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:     ExtractDBColumns[order.Order](),
		lineColumns: ExtractDBColumns[order.Line](),
	}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	sql, args, err := r.builder.Insert(ordersTable).
		SetMap(StructToMap(o)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, orderID, false)
}

// GetForUpdate retrieves an order with a row lock. Must be called within
// a transaction.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, orderID, true)
}

func (r *OrderRepo) get(ctx context.Context, orderID id.ID, forUpdate bool) (*order.Order, error) {
	q := r.builder.Select(r.columns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var o order.Order
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &o, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// Update persists order changes with optimistic locking.
func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	currentVersion := o.Version
	o.Version++

	values := StructToMap(o)
	delete(values, "id")
	delete(values, "created_at")

	sql, args, err := r.builder.Update(ordersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": o.ID, "version": currentVersion}).
		ToSql()
	if err != nil {
		o.Version = currentVersion
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		o.Version = currentVersion
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		o.Version = currentVersion
		return apperror.NewConcurrentModification("order", o.ID)
	}
	return nil
}

// Delete removes an order and its lines.
func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.builder.Delete(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}

	sql, args, err = r.builder.Delete(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

// List returns orders matching the filter, newest first.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	q := r.builder.Select(r.columns...).
		From(ordersTable).
		OrderBy("created_at DESC")

	if filter.LiveSessionID != nil {
		q = q.Where(squirrel.Eq{"live_session_id": *filter.LiveSessionID})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.PaymentStatus != nil {
		q = q.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var orders []order.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListByCustomer returns every order of a customer, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]order.Order, error) {
	cid := customerID
	return r.List(ctx, order.ListFilter{CustomerID: &cid})
}

// FindBySessionAndCustomer returns the customer's latest non-PAID order
// in the session, or nil when none exists. Settled orders are closed to
// further lines, so a PAID order must never shadow an older open one.
func (r *OrderRepo) FindBySessionAndCustomer(ctx context.Context, sessionID, customerID id.ID) (*order.Order, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(ordersTable).
		Where(squirrel.Eq{
			"live_session_id": sessionID,
			"customer_id":     customerID,
		}).
		Where(squirrel.NotEq{"payment_status": order.PaymentPaid}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var o order.Order
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &o, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

// ListUnpaidBySession returns the session's UNPAID orders.
func (r *OrderRepo) ListUnpaidBySession(ctx context.Context, sessionID id.ID) ([]order.Order, error) {
	sid := sessionID
	unpaid := order.PaymentUnpaid
	return r.List(ctx, order.ListFilter{LiveSessionID: &sid, PaymentStatus: &unpaid})
}

// CreateLine inserts an order line.
func (r *OrderRepo) CreateLine(ctx context.Context, line *order.Line) error {
	sql, args, err := r.builder.Insert(orderLinesTable).
		SetMap(StructToMap(line)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// DeleteLine removes an order line.
func (r *OrderRepo) DeleteLine(ctx context.Context, lineID id.ID) error {
	sql, args, err := r.builder.Delete(orderLinesTable).
		Where(squirrel.Eq{"id": lineID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order line", lineID)
	}
	return nil
}

// ListLines returns an order's lines in creation order.
func (r *OrderRepo) ListLines(ctx context.Context, orderID id.ID) ([]order.Line, error) {
	sql, args, err := r.builder.Select(r.lineColumns...).
		From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var lines []order.Line
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return lines, nil
}

// FindLineByClaim returns the line built from a claim, or nil.
func (r *OrderRepo) FindLineByClaim(ctx context.Context, claimID id.ID) (*order.Line, error) {
	sql, args, err := r.builder.Select(r.lineColumns...).
		From(orderLinesTable).
		Where(squirrel.Eq{"claim_id": claimID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var line order.Line
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &line, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find line by claim: %w", err)
	}
	return &line, nil
}
