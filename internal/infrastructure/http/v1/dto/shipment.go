package dto

import (
	"livecart/internal/core/types"
	"livecart/internal/domain/shipment"
)

// ShipmentRequest creates or updates the shipment for an order.
type ShipmentRequest struct {
	Courier        string `json:"courier" binding:"required"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	ShippingCost   int64  `json:"shippingCost" binding:"gte=0"`
	Address        string `json:"address,omitempty"`
}

// ToInput converts request to domain shipment input.
func (r *ShipmentRequest) ToInput() shipment.Input {
	return shipment.Input{
		Courier:        r.Courier,
		TrackingNumber: r.TrackingNumber,
		ShippingCost:   types.MinorUnits(r.ShippingCost),
		Address:        r.Address,
	}
}

// SetShipmentStatusRequest represents a courier status update.
type SetShipmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListShipmentsQuery contains shipment list filters.
type ListShipmentsQuery struct {
	PageRequest
	Status string `form:"status"`
}
