package customer

import (
	"context"

	"livecart/internal/core/id"
)

// Sort orders a customer listing.
type Sort string

const (
	SortByName        Sort = "name"
	SortBySpent       Sort = "total_spent"
	SortByOrders      Sort = "total_orders"
	SortByJoyReserve  Sort = "joy_reserve_count"
	SortByOutstanding Sort = "outstanding_balance"
)

// ListFilter narrows customer listings.
type ListFilter struct {
	Search          string
	WithOutstanding bool
	MinJoyReserve   int
	Sort            Sort
	Limit           int
	Offset          int
}

// Repository is the persistence port for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)
	// FindByNormalizedName returns the customer with the normalized
	// name, or nil when none exists.
	FindByNormalizedName(ctx context.Context, normalized string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
}
