// Package shipment tracks the physical leg of an order and cascades
// courier status changes back onto the order lifecycle.
package shipment

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
)

// Status is the courier-side state of a shipment.
type Status string

const (
	StatusPreparing Status = "PREPARING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
	StatusReturned  Status = "RETURNED"
)

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPreparing, StatusInTransit, StatusDelivered, StatusFailed, StatusReturned:
		return true
	}
	return false
}

// Shipment is the delivery record of an order. One shipment per order.
type Shipment struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	Courier        string           `db:"courier" json:"courier"`
	TrackingNumber string           `db:"tracking_number" json:"trackingNumber,omitempty"`
	Status         Status           `db:"status" json:"status"`
	ShippingCost   types.MinorUnits `db:"shipping_cost" json:"shippingCost"`
	Address        string           `db:"address" json:"address,omitempty"`

	ShippedAt   *time.Time `db:"shipped_at" json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a shipment in PREPARING.
func New(orderID id.ID, courier string) *Shipment {
	now := time.Now().UTC()
	return &Shipment{
		ID:        id.New(),
		OrderID:   orderID,
		Courier:   courier,
		Status:    StatusPreparing,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modified timestamp.
func (sh *Shipment) Touch() {
	sh.UpdatedAt = time.Now().UTC()
}

// Validate checks shipment invariants.
func (sh *Shipment) Validate(ctx context.Context) error {
	if id.IsNil(sh.OrderID) {
		return apperror.NewValidation("order id is required").
			WithDetail("field", "orderId")
	}
	if sh.Courier == "" {
		return apperror.NewValidation("courier is required").
			WithDetail("field", "courier")
	}
	if sh.ShippingCost.IsNegative() {
		return apperror.NewValidation("shipping cost must not be negative").
			WithDetail("field", "shippingCost")
	}
	if !sh.Status.IsValid() {
		return apperror.NewValidation("unknown shipment status").
			WithDetail("status", string(sh.Status))
	}
	return nil
}

// Repository is the persistence port for shipments.
type Repository interface {
	Create(ctx context.Context, sh *Shipment) error
	GetByID(ctx context.Context, shipmentID id.ID) (*Shipment, error)
	// FindByOrder returns the order's shipment, or nil when none exists.
	FindByOrder(ctx context.Context, orderID id.ID) (*Shipment, error)
	Update(ctx context.Context, sh *Shipment) error
	List(ctx context.Context, status *Status, limit, offset int) ([]Shipment, error)
}
