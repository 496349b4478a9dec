// Package order provides the order aggregate: orders, order lines, the
// totals recalculator and the order status state machine. Every mutation
// elsewhere in the engine re-enters the recalculator here.
package order

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
)

// Order is a buyer's order within a live session. The monetary totals,
// paymentStatus and (outside terminal states) status are derived fields:
// they are only written by the recalculator.
type Order struct {
	ID            id.ID  `db:"id" json:"id"`
	OrderNumber   string `db:"order_number" json:"orderNumber"`
	CustomerID    id.ID  `db:"customer_id" json:"customerId"`
	LiveSessionID id.ID  `db:"live_session_id" json:"liveSessionId"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	Subtotal           types.MinorUnits `db:"subtotal" json:"subtotal"`
	DiscountTotal      types.MinorUnits `db:"discount_total" json:"discountTotal"`
	PromoDiscountTotal types.MinorUnits `db:"promo_discount_total" json:"promoDiscountTotal"`
	ShippingFee        types.MinorUnits `db:"shipping_fee" json:"shippingFee"`
	CODFee             types.MinorUnits `db:"cod_fee" json:"codFee"`
	OtherFees          types.MinorUnits `db:"other_fees" json:"otherFees"`
	GrandTotal         types.MinorUnits `db:"grand_total" json:"grandTotal"`
	AmountPaid         types.MinorUnits `db:"amount_paid" json:"amountPaid"`
	BalanceDue         types.MinorUnits `db:"balance_due" json:"balanceDue"`

	Notes string `db:"notes" json:"notes,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an empty unpaid order for a customer in a session.
func New(orderNumber string, customerID, sessionID id.ID) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            id.New(),
		OrderNumber:   orderNumber,
		CustomerID:    customerID,
		LiveSessionID: sessionID,
		Status:        StatusPendingPayment,
		PaymentStatus: PaymentUnpaid,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Touch updates the modified timestamp.
func (o *Order) Touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Validate checks order invariants.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer id is required").
			WithDetail("field", "customerId")
	}
	if id.IsNil(o.LiveSessionID) {
		return apperror.NewValidation("live session id is required").
			WithDetail("field", "liveSessionId")
	}
	if o.PromoDiscountTotal.IsNegative() || o.ShippingFee.IsNegative() ||
		o.CODFee.IsNegative() || o.OtherFees.IsNegative() {
		return apperror.NewValidation("fees and discounts must not be negative")
	}
	return nil
}

// Line is one item/variant/quantity entry on an order. ClaimID links the
// line back to the claim that produced it and is the idempotency key of
// the claim-to-order builder.
type Line struct {
	ID              id.ID  `db:"id" json:"id"`
	OrderID         id.ID  `db:"order_id" json:"orderId"`
	ClaimID         *id.ID `db:"claim_id" json:"claimId,omitempty"`
	InventoryItemID id.ID  `db:"inventory_item_id" json:"inventoryItemId"`
	VariantID       *id.ID `db:"variant_id" json:"variantId,omitempty"`

	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Quantity  int              `db:"quantity" json:"quantity"`
	Discount  types.MinorUnits `db:"discount" json:"discount"`
	LineTotal types.MinorUnits `db:"line_total" json:"lineTotal"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLine creates a line and derives its total.
func NewLine(orderID id.ID, claimID *id.ID, itemID id.ID, variantID *id.ID, unitPrice types.MinorUnits, qty int) Line {
	return Line{
		ID:              id.New(),
		OrderID:         orderID,
		ClaimID:         claimID,
		InventoryItemID: itemID,
		VariantID:       variantID,
		UnitPrice:       unitPrice,
		Quantity:        qty,
		LineTotal:       unitPrice.Mul(qty),
		CreatedAt:       time.Now().UTC(),
	}
}

// VariantKey returns the line's variant ID or uuid.Nil when absent.
func (l *Line) VariantKey() id.ID {
	if l.VariantID == nil {
		return id.Nil()
	}
	return *l.VariantID
}
