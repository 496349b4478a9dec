// Package finance computes revenue/cost/profit rollups over the order
// book. Snapshots are derived on demand and never persisted.
package finance

import (
	"time"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/inventory"
	"livecart/internal/domain/livesession"
)

// Range bounds a snapshot query. Platform narrows to sessions on one
// platform when set.
type Range struct {
	From     time.Time
	To       time.Time
	Platform *livesession.Platform
}

// OrderRow is an order joined with its session, as the aggregator needs
// it.
type OrderRow struct {
	ID            id.ID                `db:"id"`
	LiveSessionID id.ID                `db:"live_session_id"`
	SessionTitle  string               `db:"session_title"`
	Platform      livesession.Platform `db:"platform"`
	Status        string               `db:"status"`
	PaymentStatus string               `db:"payment_status"`
	AmountPaid    types.MinorUnits     `db:"amount_paid"`
	GrandTotal    types.MinorUnits     `db:"grand_total"`
	ShippingFee   types.MinorUnits     `db:"shipping_fee"`
	CODFee        types.MinorUnits     `db:"cod_fee"`
	OtherFees     types.MinorUnits     `db:"other_fees"`
	CreatedAt     time.Time            `db:"created_at"`
}

// LineRow is an order line joined with its item's name, cost and
// variants, so effective cost can be resolved per line.
type LineRow struct {
	OrderID         id.ID               `db:"order_id"`
	InventoryItemID id.ID               `db:"inventory_item_id"`
	VariantID       *id.ID              `db:"variant_id"`
	ItemName        string              `db:"item_name"`
	ItemCost        types.MinorUnits    `db:"item_cost"`
	Variants        []inventory.Variant `db:"variants"`
	Quantity        int                 `db:"quantity"`
	LineTotal       types.MinorUnits    `db:"line_total"`
}

// EffectiveCost resolves the line's unit cost: variant cost when the
// variant defines one, else the item cost.
func (l *LineRow) EffectiveCost() types.MinorUnits {
	if l.VariantID != nil {
		for i := range l.Variants {
			if l.Variants[i].ID == *l.VariantID && l.Variants[i].CostPrice != nil {
				return *l.Variants[i].CostPrice
			}
		}
	}
	return l.ItemCost
}

// TopProduct is one entry of the revenue ranking.
type TopProduct struct {
	InventoryItemID id.ID            `json:"inventoryItemId"`
	Name            string           `json:"name"`
	Quantity        int              `json:"quantity"`
	Revenue         types.MinorUnits `json:"revenue"`
}

// TopSession is one entry of the per-session revenue ranking.
type TopSession struct {
	LiveSessionID id.ID                `json:"liveSessionId"`
	Title         string               `json:"title"`
	Platform      livesession.Platform `json:"platform"`
	Orders        int                  `json:"orders"`
	Revenue       types.MinorUnits     `json:"revenue"`
}

// Snapshot is the full rollup for a range.
type Snapshot struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalSales    types.MinorUnits `json:"totalSales"`
	COGS          types.MinorUnits `json:"cogs"`
	GrossProfit   types.MinorUnits `json:"grossProfit"`
	Shipping      types.MinorUnits `json:"shipping"`
	OtherExpenses types.MinorUnits `json:"otherExpenses"`
	NetProfit     types.MinorUnits `json:"netProfit"`
	MarginPct     float64          `json:"marginPct"`

	CashIn  types.MinorUnits `json:"cashIn"`
	CashOut types.MinorUnits `json:"cashOut"`

	PaidOrders  int `json:"paidOrders"`
	TotalOrders int `json:"totalOrders"`

	TopProducts []TopProduct `json:"topProducts"`
	TopSessions []TopSession `json:"topSessions"`
}

// SeriesPoint is one day of the net-profit series.
type SeriesPoint struct {
	Date      string           `json:"date"`
	Sales     types.MinorUnits `json:"sales"`
	COGS      types.MinorUnits `json:"cogs"`
	NetProfit types.MinorUnits `json:"netProfit"`
}
