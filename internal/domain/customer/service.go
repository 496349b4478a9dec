package customer

import (
	"context"

	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/order"
	"livecart/internal/domain/policy"
	"livecart/pkg/logger"
)

// Service manages customers and keeps their derived counters in sync
// with the order book. It satisfies order.CustomerStats.
type Service struct {
	repo      Repository
	orderRepo order.Repository
	claimRepo claim.Repository
	policy    *policy.Engine
	txManager tx.Manager
	audit     audit.Recorder
}

var _ order.CustomerStats = (*Service)(nil)

// NewService creates a customer service.
func NewService(repo Repository, orderRepo order.Repository, claimRepo claim.Repository, eng *policy.Engine, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		orderRepo: orderRepo,
		claimRepo: claimRepo,
		policy:    eng,
		txManager: txManager,
		audit:     rec,
	}
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	c.NormalizedName = claim.NormalizeName(c.Name)
	return s.repo.Create(ctx, c)
}

// GetByID returns a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// List returns customers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	return s.repo.List(ctx, filter)
}

// Update persists profile edits. A name change re-normalizes the
// matching key, so future claims under the old spelling create a new
// customer rather than attach to this one.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	c.NormalizedName = claim.NormalizeName(c.Name)
	c.Touch()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.audit.Record(ctx, "customer", c.ID, audit.ActionUpdate, map[string]any{
		"name": c.Name,
	})
	return nil
}

// LookupOrCreate resolves a display name to a customer, creating one on
// first sight. Matching is by normalized name.
func (s *Service) LookupOrCreate(ctx context.Context, name string) (*Customer, error) {
	normalized := claim.NormalizeName(name)
	existing, err := s.repo.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	c := New(name)
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info(ctx, "customer created from claim name",
		"customer_id", c.ID, "name", c.Name)
	return c, nil
}

// History is a customer with their full order list and any claims
// flagged as joy-reserve risks.
type History struct {
	Customer      *Customer     `json:"customer"`
	Orders        []order.Order `json:"orders"`
	FlaggedClaims []claim.Claim `json:"flaggedClaims"`
}

// GetWithHistory returns the customer, every order they placed and their
// flagged claims.
func (s *Service) GetWithHistory(ctx context.Context, customerID id.ID) (*History, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	flagged, err := s.claimRepo.ListJoyReserveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &History{Customer: c, Orders: orders, FlaggedClaims: flagged}, nil
}

// RecomputeStats rederives the customer's counters from their orders.
// Cancelled orders are excluded. "Paid" and "joy reserve" are decided by
// the configured predicates; the joy-reserve counter adds explicitly
// flagged claims on top of qualifying orders.
func (s *Service) RecomputeStats(ctx context.Context, customerID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		c.TotalOrders = 0
		c.TotalPaidOrders = 0
		c.TotalSpent = 0
		c.OutstandingBalance = 0
		c.FirstOrderAt = nil
		c.LastOrderAt = nil
		joyOrders := 0
		for i := range orders {
			o := &orders[i]
			if o.Status == order.StatusCancelled {
				continue
			}
			c.TotalOrders++
			created := o.CreatedAt
			if c.FirstOrderAt == nil || created.Before(*c.FirstOrderAt) {
				c.FirstOrderAt = &created
			}
			if c.LastOrderAt == nil || created.After(*c.LastOrderAt) {
				c.LastOrderAt = &created
			}
			if o.BalanceDue.IsPositive() && o.Status != order.StatusReturned {
				c.OutstandingBalance += o.BalanceDue
			}

			facts := policy.OrderFacts{
				Status:        string(o.Status),
				PaymentStatus: string(o.PaymentStatus),
				AmountPaid:    o.AmountPaid,
				GrandTotal:    o.GrandTotal,
			}
			paid, err := s.policy.IsPaid(facts)
			if err != nil {
				return err
			}
			if paid {
				c.TotalPaidOrders++
				c.TotalSpent += o.GrandTotal
			}
			joy, err := s.policy.IsJoyReserve(facts)
			if err != nil {
				return err
			}
			if joy && !o.Status.IsTerminal() {
				joyOrders++
			}
		}

		flagged, err := s.claimRepo.CountJoyReserveByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		c.JoyReserveCount = joyOrders + flagged

		c.Touch()
		return s.repo.Update(ctx, c)
	})
}
