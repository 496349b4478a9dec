package order

import (
	"context"
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/core/types"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/payment"
	"livecart/pkg/logger"
)

// CustomerStats recomputes a customer's aggregate counters after an
// order changes. Implemented by the customer service and wired at
// startup to avoid a package cycle.
type CustomerStats interface {
	RecomputeStats(ctx context.Context, customerID id.ID) error
}

// nopStats is used until a real recomputer is attached.
type nopStats struct{}

func (nopStats) RecomputeStats(context.Context, id.ID) error { return nil }

// Service orchestrates order mutations. Every write path funnels through
// recalc so the derived fields never drift from the lines and payments.
type Service struct {
	repo        Repository
	paymentRepo payment.Repository
	txManager   tx.Manager
	stats       CustomerStats
	audit       audit.Recorder
}

// NewService creates an order service.
func NewService(repo Repository, paymentRepo payment.Repository, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:        repo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		stats:       nopStats{},
		audit:       rec,
	}
}

// SetCustomerStats attaches the customer stats recomputer.
func (s *Service) SetCustomerStats(stats CustomerStats) {
	if stats != nil {
		s.stats = stats
	}
}

// Detail is an order with its lines and payments.
type Detail struct {
	Order    *Order            `json:"order"`
	Lines    []Line            `json:"lines"`
	Payments []payment.Payment `json:"payments"`
}

// GetByID returns the order alone.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// GetDetail returns the order with lines and payments.
func (s *Service) GetDetail(ctx context.Context, orderID id.ID) (*Detail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: o, Lines: lines, Payments: payments}, nil
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.List(ctx, filter)
}

// recalcLocked reloads lines and payments for a row-locked order,
// rederives its fields and persists it. Callers hold the transaction.
func (s *Service) recalcLocked(ctx context.Context, o *Order) error {
	lines, err := s.repo.ListLines(ctx, o.ID)
	if err != nil {
		return err
	}
	payments, err := s.paymentRepo.ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	Recalculate(o, lines, payments)
	o.Touch()
	return s.repo.Update(ctx, o)
}

// RecalculateLocked rederives and persists totals for an order the
// caller has already row-locked in its own transaction.
func (s *Service) RecalculateLocked(ctx context.Context, o *Order) error {
	return s.recalcLocked(ctx, o)
}

// RecalculateTotals rederives and persists an order's totals, then
// refreshes the customer's aggregates.
func (s *Service) RecalculateTotals(ctx context.Context, orderID id.ID) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.recalcLocked(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if err := s.stats.RecomputeStats(ctx, o.CustomerID); err != nil {
		logger.Warn(ctx, "customer stats recompute failed",
			"customer_id", o.CustomerID, "error", err)
	}
	return o, nil
}

// FeeUpdate carries manual adjustments to an order's fees and discounts.
// Nil fields are left unchanged.
type FeeUpdate struct {
	PromoDiscountTotal *types.MinorUnits
	ShippingFee        *types.MinorUnits
	CODFee             *types.MinorUnits
	OtherFees          *types.MinorUnits
	Notes              *string
}

// UpdateFees applies manual fee and discount changes and recalculates.
func (s *Service) UpdateFees(ctx context.Context, orderID id.ID, upd FeeUpdate) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if upd.PromoDiscountTotal != nil {
			o.PromoDiscountTotal = *upd.PromoDiscountTotal
		}
		if upd.ShippingFee != nil {
			o.ShippingFee = *upd.ShippingFee
		}
		if upd.CODFee != nil {
			o.CODFee = *upd.CODFee
		}
		if upd.OtherFees != nil {
			o.OtherFees = *upd.OtherFees
		}
		if upd.Notes != nil {
			o.Notes = *upd.Notes
		}
		if err := o.Validate(ctx); err != nil {
			return err
		}
		if err := s.recalcLocked(ctx, o); err != nil {
			return err
		}
		s.audit.Record(ctx, "order", o.ID, audit.ActionUpdate, map[string]any{
			"grand_total": o.GrandTotal,
			"balance_due": o.BalanceDue,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.stats.RecomputeStats(ctx, o.CustomerID); err != nil {
		logger.Warn(ctx, "customer stats recompute failed",
			"customer_id", o.CustomerID, "error", err)
	}
	return o, nil
}

// PaymentInput carries the fields for recording a payment.
type PaymentInput struct {
	Amount    types.MinorUnits
	Method    payment.Method
	Date      time.Time
	Reference string
}

// PaymentResult pairs a payment with the recalculated order.
type PaymentResult struct {
	Payment *payment.Payment `json:"payment"`
	Order   *Order           `json:"order"`
}

// RecordPayment appends a POSTED payment to the order's ledger and
// recalculates. Payments against cancelled orders are rejected.
func (s *Service) RecordPayment(ctx context.Context, orderID id.ID, in PaymentInput) (*PaymentResult, error) {
	var (
		o *Order
		p *payment.Payment
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot record a payment against a cancelled order").
				WithDetail("order_id", o.ID.String())
		}
		p = payment.New(orderID, in.Amount, in.Method, in.Date, in.Reference)
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if err := s.paymentRepo.Create(ctx, p); err != nil {
			return err
		}
		if err := s.recalcLocked(ctx, o); err != nil {
			return err
		}
		s.audit.Record(ctx, "payment", p.ID, audit.ActionPostPay, map[string]any{
			"order_id": o.ID.String(),
			"amount":   p.Amount,
			"method":   string(p.Method),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "payment recorded",
		"order_id", o.ID, "payment_id", p.ID,
		"amount", p.Amount, "payment_status", o.PaymentStatus)
	if err := s.stats.RecomputeStats(ctx, o.CustomerID); err != nil {
		logger.Warn(ctx, "customer stats recompute failed",
			"customer_id", o.CustomerID, "error", err)
	}
	return &PaymentResult{Payment: p, Order: o}, nil
}

// VoidPayment marks a payment VOIDED and recalculates its order. The
// ledger row is kept; voiding twice fails.
func (s *Service) VoidPayment(ctx context.Context, paymentID id.ID) (*PaymentResult, error) {
	var (
		o *Order
		p *payment.Payment
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		o, err = s.repo.GetForUpdate(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if err := p.Void(); err != nil {
			return err
		}
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			return err
		}
		if err := s.recalcLocked(ctx, o); err != nil {
			return err
		}
		s.audit.Record(ctx, "payment", p.ID, audit.ActionVoidPay, map[string]any{
			"order_id": o.ID.String(),
			"amount":   p.Amount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "payment voided",
		"order_id", o.ID, "payment_id", p.ID, "payment_status", o.PaymentStatus)
	if err := s.stats.RecomputeStats(ctx, o.CustomerID); err != nil {
		logger.Warn(ctx, "customer stats recompute failed",
			"customer_id", o.CustomerID, "error", err)
	}
	return &PaymentResult{Payment: p, Order: o}, nil
}

// SetStatus performs a manual status move through the transition table.
func (s *Service) SetStatus(ctx context.Context, orderID id.ID, to Status) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := Transition(o.ID.String(), o.Status, to)
		if err != nil {
			return err
		}
		if next == o.Status {
			return nil
		}
		from := o.Status
		o.Status = next
		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		s.audit.Record(ctx, "order", o.ID, audit.ActionUpdate, map[string]any{
			"status_from": string(from),
			"status_to":   string(next),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.stats.RecomputeStats(ctx, o.CustomerID); err != nil {
		logger.Warn(ctx, "customer stats recompute failed",
			"customer_id", o.CustomerID, "error", err)
	}
	return o, nil
}
