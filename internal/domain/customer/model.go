// Package customer manages buyer records and their derived reliability
// counters. Customers are matched across sessions by normalized display
// name, the only identifier available from a live comment feed.
package customer

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/claim"
)

// Customer is a buyer. The counter fields are derived: they are only
// written by RecomputeStats and mirror the customer's orders.
type Customer struct {
	ID             id.ID  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	NormalizedName string `db:"normalized_name" json:"normalizedName"`
	Phone          string `db:"phone" json:"phone,omitempty"`
	Address        string `db:"address" json:"address,omitempty"`
	Notes          string `db:"notes" json:"notes,omitempty"`

	TotalOrders        int              `db:"total_orders" json:"totalOrders"`
	TotalPaidOrders    int              `db:"total_paid_orders" json:"totalPaidOrders"`
	TotalSpent         types.MinorUnits `db:"total_spent" json:"totalSpent"`
	OutstandingBalance types.MinorUnits `db:"outstanding_balance" json:"outstandingBalance"`
	JoyReserveCount    int              `db:"joy_reserve_count" json:"joyReserveCount"`
	FirstOrderAt       *time.Time       `db:"first_order_at" json:"firstOrderAt,omitempty"`
	LastOrderAt        *time.Time       `db:"last_order_at" json:"lastOrderAt,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a customer from a display name.
func New(name string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:             id.New(),
		Name:           name,
		NormalizedName: claim.NormalizeName(name),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Touch updates the modified timestamp.
func (c *Customer) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// Validate checks customer invariants.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	return nil
}
