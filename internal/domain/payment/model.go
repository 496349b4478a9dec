// Package payment provides the append-only payment ledger. Payments are
// posted against an order and voided by flipping status; rows are never
// deleted. Posting and voiding are orchestrated by the order service so the
// ledger write and the totals recalculation share one transaction.
package payment

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
)

// Status of a ledger entry.
type Status string

const (
	StatusPosted Status = "POSTED"
	StatusVoided Status = "VOIDED"
)

// Method of payment.
type Method string

const (
	MethodCash         Method = "CASH"
	MethodGCash        Method = "GCASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCOD          Method = "COD"
)

// Payment is one ledger entry against an order.
type Payment struct {
	ID        id.ID            `db:"id" json:"id"`
	OrderID   id.ID            `db:"order_id" json:"orderId"`
	Date      time.Time        `db:"date" json:"date"`
	Amount    types.MinorUnits `db:"amount" json:"amount"`
	Method    Method           `db:"method" json:"method"`
	Reference string           `db:"reference" json:"reference,omitempty"`
	Status    Status           `db:"status" json:"status"`
	VoidedAt  *time.Time       `db:"voided_at" json:"voidedAt,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// New creates a posted payment.
func New(orderID id.ID, amount types.MinorUnits, method Method, date time.Time, reference string) *Payment {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &Payment{
		ID:        id.New(),
		OrderID:   orderID,
		Date:      date,
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Status:    StatusPosted,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks ledger entry invariants.
func (p *Payment) Validate(ctx context.Context) error {
	if id.IsNil(p.OrderID) {
		return apperror.NewValidation("order id is required").
			WithDetail("field", "orderId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", int64(p.Amount))
	}
	switch p.Method {
	case MethodCash, MethodGCash, MethodBankTransfer, MethodCOD:
	default:
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}
	return nil
}

// Void flips the entry to VOIDED. Voiding twice is a business-rule error.
func (p *Payment) Void() error {
	if p.Status == StatusVoided {
		return apperror.NewPaymentVoided(p.ID.String())
	}
	now := time.Now().UTC()
	p.Status = StatusVoided
	p.VoidedAt = &now
	return nil
}

// Repository defines persistence operations for the payment ledger.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)

	// Update persists a status flip. The ledger is append-only apart
	// from voiding.
	Update(ctx context.Context, p *Payment) error

	ListByOrder(ctx context.Context, orderID id.ID) ([]Payment, error)
}

// SumPosted totals the POSTED entries in a slice.
func SumPosted(payments []Payment) types.MinorUnits {
	var total types.MinorUnits
	for _, p := range payments {
		if p.Status == StatusPosted {
			total += p.Amount
		}
	}
	return total
}
