// Package claim provides the buyer claim model. Claims are produced by an
// external intake workflow; the engine only consumes them. An ACCEPTED
// claim carries a stock reservation placed by that workflow.
package claim

import (
	"context"
	"strings"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
)

// Status of a claim. ACCEPTED is the only status the engine acts on.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Claim is a buyer's request for an item/quantity during a live session.
type Claim struct {
	ID              id.ID  `db:"id" json:"id"`
	LiveSessionID   id.ID  `db:"live_session_id" json:"liveSessionId"`
	InventoryItemID id.ID  `db:"inventory_item_id" json:"inventoryItemId"`
	VariantID       *id.ID `db:"variant_id" json:"variantId,omitempty"`
	CustomerID      *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// TemporaryName is the buyer handle captured during the stream,
	// used to resolve a customer when CustomerID is absent.
	TemporaryName string `db:"temporary_name" json:"temporaryName"`

	Quantity int    `db:"quantity" json:"quantity"`
	Status   Status `db:"status" json:"status"`

	// JoyReserve marks a buyer flagged by the intake workflow as a
	// claim-and-never-pay risk.
	JoyReserve bool `db:"joy_reserve" json:"joyReserve"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a pending claim as delivered by the intake feed.
func New(sessionID, itemID id.ID, variantID *id.ID, temporaryName string, quantity int) *Claim {
	now := time.Now().UTC()
	return &Claim{
		ID:              id.New(),
		LiveSessionID:   sessionID,
		InventoryItemID: itemID,
		VariantID:       variantID,
		TemporaryName:   temporaryName,
		Quantity:        quantity,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate checks claim invariants.
func (c *Claim) Validate(ctx context.Context) error {
	if id.IsNil(c.LiveSessionID) {
		return apperror.NewValidation("live session id is required").
			WithDetail("field", "liveSessionId")
	}
	if id.IsNil(c.InventoryItemID) {
		return apperror.NewValidation("inventory item id is required").
			WithDetail("field", "inventoryItemId")
	}
	if c.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if c.TemporaryName == "" && (c.CustomerID == nil || id.IsNil(*c.CustomerID)) {
		return apperror.NewValidation("claim needs a customer id or a buyer name")
	}
	switch c.Status {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
	default:
		return apperror.NewValidation("unknown claim status").
			WithDetail("status", string(c.Status))
	}
	return nil
}

// VariantKey returns the claim's variant ID or uuid.Nil when absent.
// Used as part of composite line matching.
func (c *Claim) VariantKey() id.ID {
	if c.VariantID == nil {
		return id.Nil()
	}
	return *c.VariantID
}

// NormalizeName canonicalizes a buyer display name for customer matching:
// lowercase with runs of whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Repository defines persistence over claims. Claims originate in the
// intake feed; the engine ingests them in bulk, flips statuses, and
// backfills resolved customers.
type Repository interface {
	CreateBatch(ctx context.Context, claims []Claim) error
	UpdateStatus(ctx context.Context, claimID id.ID, status Status) error
	GetByID(ctx context.Context, claimID id.ID) (*Claim, error)
	ListBySession(ctx context.Context, sessionID id.ID) ([]Claim, error)
	ListAcceptedBySession(ctx context.Context, sessionID id.ID) ([]Claim, error)

	// CountJoyReserveByCustomer counts claims explicitly flagged as
	// joy-reserve for the customer.
	CountJoyReserveByCustomer(ctx context.Context, customerID id.ID) (int, error)
	// ListJoyReserveByCustomer returns those flagged claims.
	ListJoyReserveByCustomer(ctx context.Context, customerID id.ID) ([]Claim, error)

	// SetCustomer backfills the customer resolved for a claim by
	// normalized-name lookup, so later passes match by ID directly.
	SetCustomer(ctx context.Context, claimID, customerID id.ID) error
}
