package dto

import (
	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/inventory"
)

// --- Request DTOs ---

// VariantRequest represents one variant in create/update requests.
type VariantRequest struct {
	Name         string `json:"name" binding:"required"`
	SKU          string `json:"sku,omitempty"`
	CostPrice    *int64 `json:"costPrice,omitempty" binding:"omitempty,gte=0"`
	SellingPrice *int64 `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
}

// CreateItemRequest represents a request to create an inventory item.
type CreateItemRequest struct {
	SKU               string           `json:"sku" binding:"required"`
	Name              string           `json:"name" binding:"required"`
	CostPrice         int64            `json:"costPrice" binding:"gte=0"`
	SellingPrice      int64            `json:"sellingPrice" binding:"gte=0"`
	LowStockThreshold int              `json:"lowStockThreshold" binding:"gte=0"`
	Variants          []VariantRequest `json:"variants,omitempty" binding:"omitempty,dive"`
}

// ToItem converts request to domain entity.
func (r *CreateItemRequest) ToItem() *inventory.Item {
	item := inventory.NewItem(r.SKU, r.Name, types.MinorUnits(r.CostPrice), types.MinorUnits(r.SellingPrice))
	item.LowStockThreshold = r.LowStockThreshold
	for _, v := range r.Variants {
		item.Variants = append(item.Variants, inventory.Variant{
			ID:           id.New(),
			Name:         v.Name,
			SKU:          v.SKU,
			CostPrice:    minorUnitsPtr(v.CostPrice),
			SellingPrice: minorUnitsPtr(v.SellingPrice),
		})
	}
	return item
}

// UpdateItemRequest represents a request to update an inventory item.
type UpdateItemRequest struct {
	SKU               *string          `json:"sku,omitempty"`
	Name              *string          `json:"name,omitempty"`
	CostPrice         *int64           `json:"costPrice,omitempty" binding:"omitempty,gte=0"`
	SellingPrice      *int64           `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty" binding:"omitempty,gte=0"`
	Variants          []VariantRequest `json:"variants,omitempty" binding:"omitempty,dive"`
}

// ApplyTo applies updates to an existing item. Variants, when present,
// replace the stored set.
func (r *UpdateItemRequest) ApplyTo(item *inventory.Item) {
	if r.SKU != nil {
		item.SKU = *r.SKU
	}
	if r.Name != nil {
		item.Name = *r.Name
	}
	if r.CostPrice != nil {
		item.CostPrice = types.MinorUnits(*r.CostPrice)
	}
	if r.SellingPrice != nil {
		item.SellingPrice = types.MinorUnits(*r.SellingPrice)
	}
	if r.LowStockThreshold != nil {
		item.LowStockThreshold = *r.LowStockThreshold
	}
	if r.Variants != nil {
		variants := make(inventory.Variants, 0, len(r.Variants))
		for _, v := range r.Variants {
			variants = append(variants, inventory.Variant{
				ID:           id.New(),
				Name:         v.Name,
				SKU:          v.SKU,
				CostPrice:    minorUnitsPtr(v.CostPrice),
				SellingPrice: minorUnitsPtr(v.SellingPrice),
			})
		}
		item.Variants = variants
	}
}

// AdjustStockRequest represents a manual stock adjustment.
type AdjustStockRequest struct {
	CurrentDelta  int `json:"currentDelta"`
	ReservedDelta int `json:"reservedDelta"`
}

// ToDelta converts request to a domain stock delta.
func (r *AdjustStockRequest) ToDelta() inventory.StockDelta {
	return inventory.StockDelta{
		CurrentDelta:  r.CurrentDelta,
		ReservedDelta: r.ReservedDelta,
	}
}

// ListItemsQuery contains inventory list filters.
type ListItemsQuery struct {
	PageRequest
	Search   string `form:"search"`
	LowStock bool   `form:"lowStock"`
}

// ToFilter converts query to a domain list filter.
func (q *ListItemsQuery) ToFilter() inventory.ListFilter {
	q.Defaults()
	return inventory.ListFilter{
		Search:       q.Search,
		LowStockOnly: q.LowStock,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

func minorUnitsPtr(v *int64) *types.MinorUnits {
	if v == nil {
		return nil
	}
	u := types.MinorUnits(*v)
	return &u
}
