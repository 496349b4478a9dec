package fulfillment

import (
	"context"

	"livecart/internal/core/id"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/inventory"
	"livecart/internal/domain/order"
	"livecart/pkg/logger"
)

// RemoveOrderLinesForClaim undoes the materialization of a withdrawn
// claim. Only orders with no money collected are touched: a PARTIAL or
// PAID order keeps its lines. Removing a line hands its stock back to
// the ledger. Returns the number of orders affected (0 or 1).
func (s *Service) RemoveOrderLinesForClaim(ctx context.Context, claimID id.ID) (int, error) {
	affected := 0
	var recompute id.ID

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cl, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}

		line, err := s.orders.FindLineByClaim(ctx, claimID)
		if err != nil {
			return err
		}
		if line == nil {
			line, err = s.findLegacyLine(ctx, cl)
			if err != nil || line == nil {
				return err
			}
		}

		o, err := s.orders.GetForUpdate(ctx, line.OrderID)
		if err != nil {
			return err
		}
		if o.PaymentStatus != order.PaymentUnpaid {
			logger.Info(ctx, "desync skipped: order has payments",
				"claim_id", claimID, "order_id", o.ID,
				"payment_status", o.PaymentStatus)
			return nil
		}

		if err := s.removeLine(ctx, o, line); err != nil {
			return err
		}
		affected = 1
		recompute = o.CustomerID
		s.audit.Record(ctx, "order", o.ID, audit.ActionDesync, map[string]any{
			"claim_id": claimID.String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		if err := s.customers.RecomputeStats(ctx, recompute); err != nil {
			logger.Warn(ctx, "customer stats recompute failed",
				"customer_id", recompute, "error", err)
		}
	}
	return affected, nil
}

// findLegacyLine matches a line created before claim tagging: same item,
// variant and quantity, inside one of the claimant's UNPAID session
// orders.
func (s *Service) findLegacyLine(ctx context.Context, cl *claim.Claim) (*order.Line, error) {
	if cl.CustomerID == nil {
		return nil, nil
	}
	candidates, err := s.orders.ListUnpaidBySession(ctx, cl.LiveSessionID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].CustomerID != *cl.CustomerID {
			continue
		}
		lines, err := s.orders.ListLines(ctx, candidates[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range lines {
			l := lines[j]
			if l.ClaimID == nil &&
				l.InventoryItemID == cl.InventoryItemID &&
				l.VariantKey() == cl.VariantKey() &&
				l.Quantity == cl.Quantity {
				return &l, nil
			}
		}
	}
	return nil, nil
}

// removeLine deletes the line, returns its stock and reservation, then
// either deletes the emptied order or recalculates it. Caller holds the
// row lock on o.
func (s *Service) removeLine(ctx context.Context, o *order.Order, line *order.Line) error {
	if err := s.orders.DeleteLine(ctx, line.ID); err != nil {
		return err
	}
	if _, err := s.inventory.AdjustStock(ctx, line.InventoryItemID, inventory.StockDelta{
		CurrentDelta:  line.Quantity,
		ReservedDelta: line.Quantity,
	}); err != nil {
		return err
	}

	remaining, err := s.orders.ListLines(ctx, o.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return s.orders.Delete(ctx, o.ID)
	}
	return s.ordersvc.RecalculateLocked(ctx, o)
}

// SyncUnpaidOrdersForSession reconciles every UNPAID order of a session
// against the current accepted-claim set in one pass, deleting lines
// (and emptied orders) whose backing claim is gone. Matching uses the
// builder's composite key with occurrence counting. Returns the number
// of orders affected.
func (s *Service) SyncUnpaidOrdersForSession(ctx context.Context, sessionID id.ID) (int, error) {
	affected := 0
	touched := make(map[id.ID]struct{})

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		accepted, err := s.claims.ListAcceptedBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		budget := make(map[lineKey]int)
		for i := range accepted {
			cl := &accepted[i]
			if cl.CustomerID == nil {
				// Unresolved claims cannot be attributed to an order;
				// the builder resolves them on its next run.
				continue
			}
			budget[lineKey{
				CustomerID: *cl.CustomerID,
				ItemID:     cl.InventoryItemID,
				VariantID:  cl.VariantKey(),
				Quantity:   cl.Quantity,
			}]++
		}

		orders, err := s.orders.ListUnpaidBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for i := range orders {
			o, err := s.orders.GetForUpdate(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			lines, err := s.orders.ListLines(ctx, o.ID)
			if err != nil {
				return err
			}

			removed := 0
			for j := range lines {
				key := lineKey{
					CustomerID: o.CustomerID,
					ItemID:     lines[j].InventoryItemID,
					VariantID:  lines[j].VariantKey(),
					Quantity:   lines[j].Quantity,
				}
				if budget[key] > 0 {
					budget[key]--
					continue
				}
				if err := s.orders.DeleteLine(ctx, lines[j].ID); err != nil {
					return err
				}
				if _, err := s.inventory.AdjustStock(ctx, lines[j].InventoryItemID, inventory.StockDelta{
					CurrentDelta:  lines[j].Quantity,
					ReservedDelta: lines[j].Quantity,
				}); err != nil {
					return err
				}
				removed++
			}
			if removed == 0 {
				continue
			}

			affected++
			touched[o.CustomerID] = struct{}{}
			if removed == len(lines) {
				if err := s.orders.Delete(ctx, o.ID); err != nil {
					return err
				}
			} else if err := s.ordersvc.RecalculateLocked(ctx, o); err != nil {
				return err
			}
			s.audit.Record(ctx, "order", o.ID, audit.ActionDesync, map[string]any{
				"session_id":    sessionID.String(),
				"removed_lines": removed,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for custID := range touched {
		if err := s.customers.RecomputeStats(ctx, custID); err != nil {
			logger.Warn(ctx, "customer stats recompute failed",
				"customer_id", custID, "error", err)
		}
	}
	if affected > 0 {
		logger.Info(ctx, "unpaid orders reconciled",
			"session_id", sessionID, "orders_affected", affected)
	}
	return affected, nil
}
