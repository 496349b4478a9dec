package finance

import (
	"context"
	"time"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
)

// Repository is the read port of the aggregator. It returns raw joined
// rows; all derivation happens in the service.
type Repository interface {
	// ListOrdersInRange returns orders created inside the range, joined
	// with their session, optionally narrowed to one platform.
	ListOrdersInRange(ctx context.Context, r Range) ([]OrderRow, error)
	// ListLinesForOrders returns the lines of the given orders joined
	// with item name, cost and variants.
	ListLinesForOrders(ctx context.Context, orderIDs []id.ID) ([]LineRow, error)
	// SumPostedPaymentsInRange sums POSTED payments dated inside the
	// range, regardless of order.
	SumPostedPaymentsInRange(ctx context.Context, from, to time.Time) (types.MinorUnits, error)
}
