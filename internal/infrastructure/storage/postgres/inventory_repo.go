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
	"livecart/internal/domain/inventory"
)

const inventoryTable = "inventory_items"

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ inventory.Repository = (*InventoryRepo)(nil)

// NewInventoryRepo creates an inventory repository.
func NewInventoryRepo(txManager *TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[inventory.Item](),
	}
}

// Create inserts a new item.
func (r *InventoryRepo) Create(ctx context.Context, item *inventory.Item) error {
	sql, args, err := r.builder.Insert(inventoryTable).
		SetMap(StructToMap(item)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID.
func (r *InventoryRepo) GetByID(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	return r.get(ctx, itemID, false)
}

// GetForUpdate retrieves an item with a row lock. Must be called within
// a transaction.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	return r.get(ctx, itemID, true)
}

func (r *InventoryRepo) get(ctx context.Context, itemID id.ID, forUpdate bool) (*inventory.Item, error) {
	q := r.builder.Select(r.columns...).
		From(inventoryTable).
		Where(squirrel.Eq{"id": itemID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var item inventory.Item
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &item, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("inventory item", itemID)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// Update persists item changes with optimistic locking.
func (r *InventoryRepo) Update(ctx context.Context, item *inventory.Item) error {
	currentVersion := item.Version
	item.Version++

	values := StructToMap(item)
	delete(values, "id")
	delete(values, "created_at")

	sql, args, err := r.builder.Update(inventoryTable).
		SetMap(values).
		Where(squirrel.Eq{"id": item.ID, "version": currentVersion}).
		ToSql()
	if err != nil {
		item.Version = currentVersion
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		item.Version = currentVersion
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		item.Version = currentVersion
		return apperror.NewConcurrentModification("inventory item", item.ID)
	}
	return nil
}

// List returns items matching the filter.
func (r *InventoryRepo) List(ctx context.Context, filter inventory.ListFilter) ([]inventory.Item, error) {
	q := r.builder.Select(r.columns...).
		From(inventoryTable).
		OrderBy("name ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
		})
	}
	if filter.LowStockOnly {
		q = q.Where("current_stock <= low_stock_threshold")
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

	var items []inventory.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}
