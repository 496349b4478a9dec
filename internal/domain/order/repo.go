package order

import (
	"context"
	"time"

	"livecart/internal/core/id"
)

// ListFilter narrows order listings.
type ListFilter struct {
	LiveSessionID *id.ID
	CustomerID    *id.ID
	Status        *Status
	PaymentStatus *PaymentStatus
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// Repository is the persistence port for orders and their lines.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	// GetForUpdate loads the order with a row lock inside the current
	// transaction.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	// Delete removes an order and its lines. Only the desync handler
	// calls this, and only for orders with no money collected.
	Delete(ctx context.Context, orderID id.ID) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID id.ID) ([]Order, error)
	// FindBySessionAndCustomer returns the customer's latest non-PAID
	// order in the session, or nil when none is open.
	FindBySessionAndCustomer(ctx context.Context, sessionID, customerID id.ID) (*Order, error)
	ListUnpaidBySession(ctx context.Context, sessionID id.ID) ([]Order, error)

	CreateLine(ctx context.Context, line *Line) error
	DeleteLine(ctx context.Context, lineID id.ID) error
	ListLines(ctx context.Context, orderID id.ID) ([]Line, error)
	// FindLineByClaim returns the line built from a claim, or nil.
	FindLineByClaim(ctx context.Context, claimID id.ID) (*Line, error)
}
