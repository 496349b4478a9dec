package claim

import (
	"context"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/inventory"
	"livecart/pkg/logger"
)

// Desyncer removes order lines that were generated from a claim which is
// no longer accepted. Satisfied by the fulfillment service.
type Desyncer interface {
	RemoveOrderLinesForClaim(ctx context.Context, claimID id.ID) (int, error)
}

// Stock keeps the inventory reservation in step with a claim's
// moderation status. Satisfied by the inventory service.
type Stock interface {
	AdjustStock(ctx context.Context, itemID id.ID, delta inventory.StockDelta) (*inventory.Item, error)
}

// Service handles claim intake: batch import from stream comments and
// status changes after moderation.
type Service struct {
	repo      Repository
	stock     Stock
	desync    Desyncer
	txManager tx.Manager
	audit     audit.Recorder
}

func NewService(repo Repository, stock Stock, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		stock:     stock,
		txManager: txManager,
		audit:     rec,
	}
}

// SetDesyncer wires the fulfillment service after construction.
func (s *Service) SetDesyncer(d Desyncer) {
	s.desync = d
}

// Input describes one claim captured during a live session.
type Input struct {
	InventoryItemID id.ID
	VariantID       *id.ID
	CustomerID      *id.ID
	TemporaryName   string
	Quantity        int
	JoyReserve      bool
}

// ImportBatch validates and stores a batch of claims for a session.
// The whole batch is written in one transaction; a single invalid claim
// rejects the batch.
func (s *Service) ImportBatch(ctx context.Context, sessionID id.ID, inputs []Input) ([]Claim, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewValidation("claim batch is empty")
	}

	claims := make([]Claim, 0, len(inputs))
	for i, in := range inputs {
		cl := New(sessionID, in.InventoryItemID, in.VariantID, in.TemporaryName, in.Quantity)
		cl.CustomerID = in.CustomerID
		cl.JoyReserve = in.JoyReserve
		if err := cl.Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, appErr.WithDetail("index", i)
			}
			return nil, err
		}
		claims = append(claims, *cl)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateBatch(ctx, claims)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "claim", sessionID, audit.ActionCreate, map[string]any{
		"count": len(claims),
	})
	logger.Info(ctx, "claims imported",
		"session_id", sessionID,
		"count", len(claims),
	)
	return claims, nil
}

// SetStatus moves a claim to a new moderation status. Entering ACCEPTED
// places a stock reservation for the claimed quantity; leaving ACCEPTED
// removes any order line that was generated from the claim and releases
// the reservation.
func (s *Service) SetStatus(ctx context.Context, claimID id.ID, to Status) (*Claim, error) {
	switch to {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
	default:
		return nil, apperror.NewValidation("unknown claim status").WithDetail("status", string(to))
	}

	var cl *Claim
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		cl, err = s.repo.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if cl.Status == to {
			return nil
		}

		from := cl.Status
		if err := s.repo.UpdateStatus(ctx, claimID, to); err != nil {
			return err
		}
		cl.Status = to

		if to == StatusAccepted && s.stock != nil {
			if _, err := s.stock.AdjustStock(ctx, cl.InventoryItemID, inventory.StockDelta{
				ReservedDelta: cl.Quantity,
			}); err != nil {
				return err
			}
		}
		if from == StatusAccepted {
			if s.desync != nil {
				if _, err := s.desync.RemoveOrderLinesForClaim(ctx, claimID); err != nil {
					return err
				}
			}
			// The desync restore above puts back both stock and reservation
			// for a built line; the reservation itself ends with the claim
			// either way, so release it after the restore.
			if s.stock != nil {
				if _, err := s.stock.AdjustStock(ctx, cl.InventoryItemID, inventory.StockDelta{
					ReservedDelta: -cl.Quantity,
				}); err != nil {
					return err
				}
			}
		}

		s.audit.Record(ctx, "claim", claimID, audit.ActionUpdate, map[string]any{
			"status_from": string(from),
			"status_to":   string(to),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// GetByID returns a claim by ID.
func (s *Service) GetByID(ctx context.Context, claimID id.ID) (*Claim, error) {
	return s.repo.GetByID(ctx, claimID)
}

// ListBySession returns all claims for a session in intake order.
func (s *Service) ListBySession(ctx context.Context, sessionID id.ID) ([]Claim, error) {
	return s.repo.ListBySession(ctx, sessionID)
}
