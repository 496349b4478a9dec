package finance

import (
	"context"
	"sort"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/policy"
)

// topN bounds the product and session rankings in a snapshot.
const topN = 5

// Service derives finance snapshots from the order book.
type Service struct {
	repo   Repository
	policy *policy.Engine
}

// NewService creates a finance service.
func NewService(repo Repository, eng *policy.Engine) *Service {
	return &Service{repo: repo, policy: eng}
}

// isPaid applies the configured paid predicate to an order row.
func (s *Service) isPaid(row *OrderRow) (bool, error) {
	return s.policy.IsPaid(policy.OrderFacts{
		Status:        row.Status,
		PaymentStatus: row.PaymentStatus,
		AmountPaid:    row.AmountPaid,
		GrandTotal:    row.GrandTotal,
	})
}

// GetSnapshotForRange computes the full rollup for a range. Revenue,
// COGS and fees are taken from paid orders only; cash-in counts every
// POSTED payment dated in the range regardless of order state.
func (s *Service) GetSnapshotForRange(ctx context.Context, r Range) (*Snapshot, error) {
	orders, err := s.repo.ListOrdersInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		From:        r.From,
		To:          r.To,
		TotalOrders: len(orders),
		TopProducts: []TopProduct{},
		TopSessions: []TopSession{},
	}

	paidOrders := make(map[id.ID]*OrderRow, len(orders))
	sessions := make(map[id.ID]*TopSession)
	var paidIDs []id.ID
	for i := range orders {
		row := &orders[i]
		paid, err := s.isPaid(row)
		if err != nil {
			return nil, err
		}
		if !paid {
			continue
		}
		snap.PaidOrders++
		snap.TotalSales += row.GrandTotal
		snap.Shipping += row.ShippingFee
		snap.OtherExpenses += row.CODFee + row.OtherFees
		paidOrders[row.ID] = row
		paidIDs = append(paidIDs, row.ID)

		sess, ok := sessions[row.LiveSessionID]
		if !ok {
			sess = &TopSession{
				LiveSessionID: row.LiveSessionID,
				Title:         row.SessionTitle,
				Platform:      row.Platform,
			}
			sessions[row.LiveSessionID] = sess
		}
		sess.Orders++
		sess.Revenue += row.GrandTotal
	}

	products := make(map[id.ID]*TopProduct)
	if len(paidIDs) > 0 {
		lines, err := s.repo.ListLinesForOrders(ctx, paidIDs)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			l := &lines[i]
			snap.COGS += l.EffectiveCost().Mul(l.Quantity)

			p, ok := products[l.InventoryItemID]
			if !ok {
				p = &TopProduct{InventoryItemID: l.InventoryItemID, Name: l.ItemName}
				products[l.InventoryItemID] = p
			}
			p.Quantity += l.Quantity
			p.Revenue += l.LineTotal
		}
	}

	snap.GrossProfit = snap.TotalSales - snap.COGS
	snap.NetProfit = snap.GrossProfit - snap.Shipping - snap.OtherExpenses
	snap.MarginPct = types.MarginPercent(snap.NetProfit, snap.TotalSales)

	snap.CashIn, err = s.repo.SumPostedPaymentsInRange(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	snap.CashOut = snap.COGS + snap.Shipping + snap.OtherExpenses

	snap.TopProducts = rankProducts(products)
	snap.TopSessions = rankSessions(sessions)
	return snap, nil
}

func rankProducts(byItem map[id.ID]*TopProduct) []TopProduct {
	out := make([]TopProduct, 0, len(byItem))
	for _, p := range byItem {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func rankSessions(bySession map[id.ID]*TopSession) []TopSession {
	out := make([]TopSession, 0, len(bySession))
	for _, s := range bySession {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// GetNetProfitSeries buckets paid orders by creation date and returns
// one point per day, oldest first. Days without sales are omitted.
func (s *Service) GetNetProfitSeries(ctx context.Context, r Range) ([]SeriesPoint, error) {
	orders, err := s.repo.ListOrdersInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	dayOf := make(map[id.ID]string, len(orders))
	buckets := make(map[string]*SeriesPoint)
	var paidIDs []id.ID
	for i := range orders {
		row := &orders[i]
		paid, err := s.isPaid(row)
		if err != nil {
			return nil, err
		}
		if !paid {
			continue
		}
		day := row.CreatedAt.UTC().Format("2006-01-02")
		dayOf[row.ID] = day
		b, ok := buckets[day]
		if !ok {
			b = &SeriesPoint{Date: day}
			buckets[day] = b
		}
		b.Sales += row.GrandTotal
		b.NetProfit += row.GrandTotal - row.ShippingFee - row.CODFee - row.OtherFees
		paidIDs = append(paidIDs, row.ID)
	}

	if len(paidIDs) > 0 {
		lines, err := s.repo.ListLinesForOrders(ctx, paidIDs)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			l := &lines[i]
			day, ok := dayOf[l.OrderID]
			if !ok {
				continue
			}
			cost := l.EffectiveCost().Mul(l.Quantity)
			buckets[day].COGS += cost
			buckets[day].NetProfit -= cost
		}
	}

	out := make([]SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
