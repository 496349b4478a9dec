// Package fulfillment turns accepted claims into orders and keeps the
// two in sync when claims are later withdrawn. The builder and the
// desync handler are the only components that move inventory and order
// content together, so both run their whole mutation in one transaction.
package fulfillment

import (
	"context"
	"sort"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/customer"
	"livecart/internal/domain/inventory"
	"livecart/internal/domain/order"
	"livecart/pkg/logger"
)

// Numerator hands out order numbers for orders the builder creates.
type Numerator interface {
	NextOrderNumber(ctx context.Context) (string, error)
}

// lineKey identifies a materialized claim within one customer's session
// orders: same item, same variant, same quantity. Matching on the key
// (with occurrence counting) is what makes rebuilds idempotent even for
// lines that predate claim tagging.
type lineKey struct {
	CustomerID id.ID
	ItemID     id.ID
	VariantID  id.ID
	Quantity   int
}

// BuildResult reports what a builder run created.
type BuildResult struct {
	CreatedOrders int `json:"createdOrders"`
	CreatedLines  int `json:"createdLines"`
}

// Service implements the claim-to-order builder and the desync handler.
type Service struct {
	claims    claim.Repository
	orders    order.Repository
	ordersvc  *order.Service
	inventory *inventory.Service
	customers *customer.Service
	numbers   Numerator
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a fulfillment service.
func NewService(
	claims claim.Repository,
	orders order.Repository,
	ordersvc *order.Service,
	inv *inventory.Service,
	customers *customer.Service,
	numbers Numerator,
	txManager tx.Manager,
	rec audit.Recorder,
) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		claims:    claims,
		orders:    orders,
		ordersvc:  ordersvc,
		inventory: inv,
		customers: customers,
		numbers:   numbers,
		txManager: txManager,
		audit:     rec,
	}
}

// BuildOrdersFromClaims materializes the session's ACCEPTED claims into
// orders and lines, consuming the inventory reservations placed at claim
// acceptance. Claims already materialized (matched by composite key with
// occurrence counting) are skipped, so an immediate rerun creates
// nothing. Claims whose inventory item has been deleted are skipped with
// a warning. The whole run is one transaction.
func (s *Service) BuildOrdersFromClaims(ctx context.Context, sessionID id.ID) (BuildResult, error) {
	var result BuildResult
	touched := make(map[id.ID]struct{})

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.indexExistingLines(ctx, sessionID)
		if err != nil {
			return err
		}

		accepted, err := s.claims.ListAcceptedBySession(ctx, sessionID)
		if err != nil {
			return err
		}

		groups, custOrder, err := s.groupByCustomer(ctx, accepted)
		if err != nil {
			return err
		}

		for _, custID := range custOrder {
			created, lines, err := s.buildForCustomer(ctx, sessionID, custID, groups[custID], existing)
			if err != nil {
				return err
			}
			result.CreatedOrders += created
			result.CreatedLines += lines
			if lines > 0 {
				touched[custID] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return BuildResult{}, err
	}

	for custID := range touched {
		if err := s.customers.RecomputeStats(ctx, custID); err != nil {
			logger.Warn(ctx, "customer stats recompute failed",
				"customer_id", custID, "error", err)
		}
	}

	logger.Info(ctx, "orders built from claims",
		"session_id", sessionID,
		"created_orders", result.CreatedOrders,
		"created_lines", result.CreatedLines)
	return result, nil
}

// indexExistingLines counts already-materialized lines in the session by
// composite key.
func (s *Service) indexExistingLines(ctx context.Context, sessionID id.ID) (map[lineKey]int, error) {
	sid := sessionID
	orders, err := s.orders.List(ctx, order.ListFilter{LiveSessionID: &sid})
	if err != nil {
		return nil, err
	}
	index := make(map[lineKey]int)
	for i := range orders {
		lines, err := s.orders.ListLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range lines {
			index[lineKey{
				CustomerID: orders[i].CustomerID,
				ItemID:     lines[j].InventoryItemID,
				VariantID:  lines[j].VariantKey(),
				Quantity:   lines[j].Quantity,
			}]++
		}
	}
	return index, nil
}

// groupByCustomer resolves each claim to a customer (explicit ID first,
// then lookup-or-create by normalized display name) and groups them.
// Name-resolved IDs are backfilled onto the claims. The returned slice
// fixes the iteration order.
func (s *Service) groupByCustomer(ctx context.Context, claims []claim.Claim) (map[id.ID][]claim.Claim, []id.ID, error) {
	groups := make(map[id.ID][]claim.Claim)
	var custOrder []id.ID

	for i := range claims {
		cl := claims[i]
		var custID id.ID
		if cl.CustomerID != nil && !id.IsNil(*cl.CustomerID) {
			custID = *cl.CustomerID
		} else {
			c, err := s.customers.LookupOrCreate(ctx, cl.TemporaryName)
			if err != nil {
				return nil, nil, err
			}
			custID = c.ID
			if err := s.claims.SetCustomer(ctx, cl.ID, custID); err != nil {
				return nil, nil, err
			}
			cl.CustomerID = &custID
		}
		if _, seen := groups[custID]; !seen {
			custOrder = append(custOrder, custID)
		}
		groups[custID] = append(groups[custID], cl)
	}

	sort.Slice(custOrder, func(i, j int) bool {
		return custOrder[i].String() < custOrder[j].String()
	})
	return groups, custOrder, nil
}

// buildForCustomer materializes one customer's new claims, reusing their
// existing non-PAID session order when present.
func (s *Service) buildForCustomer(ctx context.Context, sessionID, custID id.ID, claims []claim.Claim, existing map[lineKey]int) (createdOrders, createdLines int, err error) {
	// Filter to claims not yet materialized.
	var fresh []claim.Claim
	for i := range claims {
		key := lineKey{
			CustomerID: custID,
			ItemID:     claims[i].InventoryItemID,
			VariantID:  claims[i].VariantKey(),
			Quantity:   claims[i].Quantity,
		}
		if existing[key] > 0 {
			existing[key]--
			continue
		}
		fresh = append(fresh, claims[i])
	}
	if len(fresh) == 0 {
		return 0, 0, nil
	}

	o, err := s.orders.FindBySessionAndCustomer(ctx, sessionID, custID)
	if err != nil {
		return 0, 0, err
	}
	if o == nil {
		number, err := s.numbers.NextOrderNumber(ctx)
		if err != nil {
			return 0, 0, err
		}
		o = order.New(number, custID, sessionID)
		if err := s.orders.Create(ctx, o); err != nil {
			return 0, 0, err
		}
		createdOrders++
	}

	for i := range fresh {
		cl := &fresh[i]
		item, err := s.inventory.GetByID(ctx, cl.InventoryItemID)
		if err != nil {
			if apperror.IsNotFound(err) {
				logger.Warn(ctx, "claim skipped: inventory item missing",
					"claim_id", cl.ID, "item_id", cl.InventoryItemID)
				continue
			}
			return createdOrders, createdLines, err
		}

		_, price := inventory.EffectivePrice(item, cl.VariantID)
		line := order.NewLine(o.ID, &cl.ID, cl.InventoryItemID, cl.VariantID, price, cl.Quantity)
		if err := s.orders.CreateLine(ctx, &line); err != nil {
			return createdOrders, createdLines, err
		}
		createdLines++

		// The acceptance workflow reserved the stock; materializing the
		// claim turns that reservation into a consumption.
		if _, err := s.inventory.AdjustStock(ctx, cl.InventoryItemID, inventory.StockDelta{
			CurrentDelta:  -cl.Quantity,
			ReservedDelta: -cl.Quantity,
		}); err != nil {
			return createdOrders, createdLines, err
		}
	}

	if err := s.ordersvc.RecalculateLocked(ctx, o); err != nil {
		return createdOrders, createdLines, err
	}
	s.audit.Record(ctx, "order", o.ID, audit.ActionBuild, map[string]any{
		"session_id": sessionID.String(),
		"lines":      createdLines,
	})
	return createdOrders, createdLines, nil
}
