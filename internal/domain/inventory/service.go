package inventory

import (
	"context"
	"fmt"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/domain/audit"
	"livecart/pkg/logger"
)

// Service provides business operations for the inventory ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new inventory service.
func NewService(repo Repository, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		audit:     rec,
	}
}

// AdjustStock applies a clamped stock adjustment to an item.
// current and reserved are adjusted independently; a delta that would drive
// a level negative is clamped at zero rather than failing. Clamps are
// logged and audited so overselling is visible even though it is tolerated.
// Returns the updated item, or NotFound if the item does not exist.
func (s *Service) AdjustStock(ctx context.Context, itemID id.ID, delta StockDelta) (*Item, error) {
	var updated *Item

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		nextCurrent := item.CurrentStock + delta.CurrentDelta
		nextReserved := item.ReservedStock + delta.ReservedDelta

		clamped := nextCurrent < 0 || nextReserved < 0
		if nextCurrent < 0 {
			nextCurrent = 0
		}
		if nextReserved < 0 {
			nextReserved = 0
		}

		if clamped {
			logger.Warn(ctx, "stock adjustment clamped at zero",
				"item_id", itemID,
				"current", item.CurrentStock,
				"reserved", item.ReservedStock,
				"current_delta", delta.CurrentDelta,
				"reserved_delta", delta.ReservedDelta,
			)
			s.audit.Record(ctx, "inventory_item", itemID, audit.ActionClamp, map[string]any{
				"current":        item.CurrentStock,
				"reserved":       item.ReservedStock,
				"current_delta":  delta.CurrentDelta,
				"reserved_delta": delta.ReservedDelta,
			})
		}

		item.CurrentStock = nextCurrent
		item.ReservedStock = nextReserved
		item.Touch()

		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "inventory_item", itemID, audit.ActionAdjust, map[string]any{
		"current_delta":  delta.CurrentDelta,
		"reserved_delta": delta.ReservedDelta,
	})

	return updated, nil
}

// Create registers a new inventory item.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, "inventory_item", item.ID, audit.ActionCreate, nil)
	return nil
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("inventory item", itemID.String())
		}
		return nil, err
	}
	return item, nil
}

// Update persists item edits after validation.
func (s *Service) Update(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	item.Touch()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, item)
	})
}

// List returns items matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ListLowStock returns items at or below their low-stock threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx, ListFilter{LowStockOnly: true, Limit: 500})
}
