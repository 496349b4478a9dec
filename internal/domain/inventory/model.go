// Package inventory provides the inventory ledger: stock levels, variants
// and effective price resolution for live-sale items.
package inventory

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
)

// Variant is a sellable variation of an item (size, color, bundle).
// Nil price fields fall back to the parent item.
type Variant struct {
	ID           id.ID             `json:"id"`
	Name         string            `json:"name"`
	SKU          string            `json:"sku,omitempty"`
	CostPrice    *types.MinorUnits `json:"costPrice,omitempty"`
	SellingPrice *types.MinorUnits `json:"sellingPrice,omitempty"`
}

// Item represents an inventory item with on-hand and reserved stock.
// CurrentStock and ReservedStock never go below zero; adjustments clamp.
type Item struct {
	ID                id.ID            `db:"id" json:"id"`
	SKU               string           `db:"sku" json:"sku"`
	Name              string           `db:"name" json:"name"`
	CostPrice         types.MinorUnits `db:"cost_price" json:"costPrice"`
	SellingPrice      types.MinorUnits `db:"selling_price" json:"sellingPrice"`
	CurrentStock      int              `db:"current_stock" json:"currentStock"`
	ReservedStock     int              `db:"reserved_stock" json:"reservedStock"`
	LowStockThreshold int              `db:"low_stock_threshold" json:"lowStockThreshold"`

	// Variants are stored as JSONB alongside the item row.
	Variants Variants `db:"variants" json:"variants,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Variants is a JSONB-backed slice of Variant.
type Variants []Variant

// NewItem creates an item with a generated ID and zero stock.
func NewItem(sku, name string, cost, price types.MinorUnits) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:           id.New(),
		SKU:          sku,
		Name:         name,
		CostPrice:    cost,
		SellingPrice: price,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Variant returns the variant with the given ID, or nil.
func (i *Item) Variant(variantID id.ID) *Variant {
	for idx := range i.Variants {
		if i.Variants[idx].ID == variantID {
			return &i.Variants[idx]
		}
	}
	return nil
}

// IsLowStock reports whether available stock has fallen to the threshold.
func (i *Item) IsLowStock() bool {
	return i.CurrentStock <= i.LowStockThreshold
}

// Touch updates the modified timestamp.
func (i *Item) Touch() {
	i.UpdatedAt = time.Now().UTC()
}

// Validate checks item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.CostPrice.IsNegative() || i.SellingPrice.IsNegative() {
		return apperror.NewValidation("prices must not be negative").
			WithDetail("field", "costPrice/sellingPrice")
	}
	if i.CurrentStock < 0 || i.ReservedStock < 0 {
		return apperror.NewValidation("stock levels must not be negative")
	}
	return nil
}

// EffectivePrice resolves the cost and selling price for an item/variant
// pair. A variant override wins; otherwise the item's own prices apply.
// A nil variantID (claim without a variant) resolves to the item prices.
func EffectivePrice(item *Item, variantID *id.ID) (cost, price types.MinorUnits) {
	cost, price = item.CostPrice, item.SellingPrice
	if variantID == nil || id.IsNil(*variantID) {
		return cost, price
	}
	v := item.Variant(*variantID)
	if v == nil {
		return cost, price
	}
	if v.CostPrice != nil {
		cost = *v.CostPrice
	}
	if v.SellingPrice != nil {
		price = *v.SellingPrice
	}
	return cost, price
}

// StockDelta describes a stock adjustment. Deltas may be negative;
// the resulting levels are clamped at zero.
type StockDelta struct {
	CurrentDelta  int `json:"currentDelta"`
	ReservedDelta int `json:"reservedDelta"`
}

// IsZero reports whether the delta changes nothing.
func (d StockDelta) IsZero() bool {
	return d.CurrentDelta == 0 && d.ReservedDelta == 0
}
