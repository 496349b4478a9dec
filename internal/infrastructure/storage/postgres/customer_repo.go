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
	"livecart/internal/domain/customer"
)

const customersTable = "customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txManager *TxManager) *CustomerRepo {
	return &CustomerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[customer.Customer](),
	}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	sql, args, err := r.builder.Insert(customersTable).
		SetMap(StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.get(ctx, customerID, false)
}

// GetForUpdate retrieves a customer with a row lock. Must be called
// within a transaction.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.get(ctx, customerID, true)
}

func (r *CustomerRepo) get(ctx context.Context, customerID id.ID, forUpdate bool) (*customer.Customer, error) {
	q := r.builder.Select(r.columns...).
		From(customersTable).
		Where(squirrel.Eq{"id": customerID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c customer.Customer
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("customer", customerID)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// FindByNormalizedName returns the customer with the normalized name,
// or nil when none exists.
func (r *CustomerRepo) FindByNormalizedName(ctx context.Context, normalized string) (*customer.Customer, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(customersTable).
		Where(squirrel.Eq{"normalized_name": normalized}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c customer.Customer
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by name: %w", err)
	}
	return &c, nil
}

// Update persists customer changes with optimistic locking.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	currentVersion := c.Version
	c.Version++

	values := StructToMap(c)
	delete(values, "id")
	delete(values, "created_at")

	sql, args, err := r.builder.Update(customersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": c.ID, "version": currentVersion}).
		ToSql()
	if err != nil {
		c.Version = currentVersion
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		c.Version = currentVersion
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		c.Version = currentVersion
		return apperror.NewConcurrentModification("customer", c.ID)
	}
	return nil
}

// List returns customers matching the filter, ranked per the sort
// option (default: biggest spenders first).
func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error) {
	q := r.builder.Select(r.columns...).From(customersTable)

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.WithOutstanding {
		q = q.Where("outstanding_balance > 0")
	}
	if filter.MinJoyReserve > 0 {
		q = q.Where(squirrel.GtOrEq{"joy_reserve_count": filter.MinJoyReserve})
	}

	switch filter.Sort {
	case customer.SortByName:
		q = q.OrderBy("name ASC")
	case customer.SortByOrders:
		q = q.OrderBy("total_orders DESC", "name ASC")
	case customer.SortByJoyReserve:
		q = q.OrderBy("joy_reserve_count DESC", "name ASC")
	case customer.SortByOutstanding:
		q = q.OrderBy("outstanding_balance DESC", "name ASC")
	default:
		q = q.OrderBy("total_spent DESC", "name ASC")
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

	var customers []customer.Customer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}
