package inventory

import (
	"context"

	"livecart/internal/core/id"
)

// Repository defines persistence operations for inventory items.
type Repository interface {
	// Create inserts a new item.
	Create(ctx context.Context, item *Item) error

	// GetByID retrieves an item by ID.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// GetForUpdate retrieves an item with a row lock.
	// Must be called within a transaction.
	GetForUpdate(ctx context.Context, itemID id.ID) (*Item, error)

	// Update persists item changes with optimistic locking.
	Update(ctx context.Context, item *Item) error

	// List returns items matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Item, error)
}

// ListFilter narrows item listings.
type ListFilter struct {
	Search       string
	LowStockOnly bool
	Limit        int
	Offset       int
}
