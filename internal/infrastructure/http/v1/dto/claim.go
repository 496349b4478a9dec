package dto

import (
	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/domain/claim"
)

// ClaimRequest represents one claim captured from the stream.
type ClaimRequest struct {
	InventoryItemID string  `json:"inventoryItemId" binding:"required"`
	VariantID       *string `json:"variantId,omitempty"`
	CustomerID      *string `json:"customerId,omitempty"`
	TemporaryName   string  `json:"temporaryName,omitempty"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	JoyReserve      bool    `json:"joyReserve,omitempty"`
}

// ImportClaimsRequest represents a batch of claims for a session.
type ImportClaimsRequest struct {
	Claims []ClaimRequest `json:"claims" binding:"required,min=1,dive"`
}

// ToInputs converts the batch to domain intake inputs.
func (r *ImportClaimsRequest) ToInputs() ([]claim.Input, error) {
	inputs := make([]claim.Input, 0, len(r.Claims))
	for i, c := range r.Claims {
		itemID, err := id.Parse(c.InventoryItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid inventory item id").WithDetail("index", i)
		}
		variantID, err := parseOptionalID(c.VariantID)
		if err != nil {
			return nil, apperror.NewValidation("invalid variant id").WithDetail("index", i)
		}
		customerID, err := parseOptionalID(c.CustomerID)
		if err != nil {
			return nil, apperror.NewValidation("invalid customer id").WithDetail("index", i)
		}
		inputs = append(inputs, claim.Input{
			InventoryItemID: itemID,
			VariantID:       variantID,
			CustomerID:      customerID,
			TemporaryName:   c.TemporaryName,
			Quantity:        c.Quantity,
			JoyReserve:      c.JoyReserve,
		})
	}
	return inputs, nil
}

// SetClaimStatusRequest represents a moderation status change.
type SetClaimStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func parseOptionalID(s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
