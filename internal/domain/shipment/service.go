package shipment

import (
	"context"
	"time"

	"livecart/internal/core/id"
	"livecart/internal/core/tx"
	"livecart/internal/core/types"
	"livecart/internal/domain/audit"
	"livecart/internal/domain/order"
	"livecart/pkg/logger"
)

// Service manages shipments and keeps order statuses in step with the
// courier leg.
type Service struct {
	repo      Repository
	orderRepo order.Repository
	orders    *order.Service
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a shipment service.
func NewService(repo Repository, orderRepo order.Repository, orders *order.Service, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		orderRepo: orderRepo,
		orders:    orders,
		txManager: txManager,
		audit:     rec,
	}
}

// cascadeTarget maps a shipment status onto the order status it implies
// for the given order, or "" when no cascade applies. The cascade only
// advances: IN_TRANSIT promotes paid orders only, PREPARING moves an
// unpaid order into PACKING, FAILED implies nothing.
func cascadeTarget(shipStatus Status, o *order.Order) order.Status {
	switch shipStatus {
	case StatusDelivered:
		return order.StatusDelivered
	case StatusReturned:
		return order.StatusReturned
	case StatusInTransit:
		if o.PaymentStatus == order.PaymentPaid {
			return order.StatusShipped
		}
	case StatusPreparing:
		if o.Status == order.StatusPendingPayment {
			return order.StatusPacking
		}
	}
	return ""
}

// cascadeLocked advances the row-locked order per the shipment status.
// Moves the order's transition table rejects are skipped, not failed:
// the courier feed must never drag an order backwards.
func (s *Service) cascadeLocked(ctx context.Context, o *order.Order, shipStatus Status) error {
	target := cascadeTarget(shipStatus, o)
	if target == "" || target == o.Status {
		return nil
	}
	if !order.CanTransition(o.Status, target) {
		logger.Warn(ctx, "shipment cascade skipped",
			"order_id", o.ID, "order_status", o.Status,
			"shipment_status", shipStatus, "target", target)
		return nil
	}
	o.Status = target
	o.Touch()
	return s.orderRepo.Update(ctx, o)
}

// Input carries the editable fields of a shipment.
type Input struct {
	Courier        string
	TrackingNumber string
	ShippingCost   types.MinorUnits
	Address        string
}

// Result pairs a shipment with its (possibly cascaded) order.
type Result struct {
	Shipment *Shipment    `json:"shipment"`
	Order    *order.Order `json:"order"`
}

// CreateOrUpdate upserts the shipment for an order. An order carries at
// most one shipment; a second create edits the existing record instead.
// The shipping cost is mirrored onto the order's fee, the totals are
// rederived and the status cascade applied.
func (s *Service) CreateOrUpdate(ctx context.Context, orderID id.ID, in Input) (*Result, error) {
	var (
		sh *Shipment
		o  *order.Order
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		sh, err = s.repo.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		created := sh == nil
		if created {
			sh = New(orderID, in.Courier)
		} else {
			sh.Courier = in.Courier
			sh.Touch()
		}
		sh.TrackingNumber = in.TrackingNumber
		sh.ShippingCost = in.ShippingCost
		sh.Address = in.Address
		if err := sh.Validate(ctx); err != nil {
			return err
		}
		if created {
			if err := s.repo.Create(ctx, sh); err != nil {
				return err
			}
		} else if err := s.repo.Update(ctx, sh); err != nil {
			return err
		}

		o.ShippingFee = sh.ShippingCost
		if err := s.orders.RecalculateLocked(ctx, o); err != nil {
			return err
		}
		return s.cascadeLocked(ctx, o, sh.Status)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "shipment", sh.ID, audit.ActionShipUpdate, map[string]any{
		"order_id": orderID.String(),
		"courier":  sh.Courier,
		"tracking": sh.TrackingNumber,
	})
	return &Result{Shipment: sh, Order: o}, nil
}

// GetByOrder returns the order's shipment.
func (s *Service) GetByOrder(ctx context.Context, orderID id.ID) (*Shipment, error) {
	return s.repo.FindByOrder(ctx, orderID)
}

// List returns shipments, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *Status, limit, offset int) ([]Shipment, error) {
	return s.repo.List(ctx, status, limit, offset)
}

// UpdateStatus moves the shipment through the courier lifecycle and
// cascades onto the order. First IN_TRANSIT stamps ShippedAt; first
// DELIVERED stamps DeliveredAt.
func (s *Service) UpdateStatus(ctx context.Context, shipmentID id.ID, to Status) (*Result, error) {
	var (
		sh *Shipment
		o  *order.Order
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sh, err = s.repo.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		prev := sh.Status
		if prev == to {
			o, err = s.orderRepo.GetByID(ctx, sh.OrderID)
			return err
		}

		now := time.Now().UTC()
		sh.Status = to
		if to == StatusInTransit && sh.ShippedAt == nil {
			sh.ShippedAt = &now
		}
		if to == StatusDelivered && sh.DeliveredAt == nil {
			sh.DeliveredAt = &now
		}
		if err := sh.Validate(ctx); err != nil {
			return err
		}
		sh.Touch()
		if err := s.repo.Update(ctx, sh); err != nil {
			return err
		}

		o, err = s.orderRepo.GetForUpdate(ctx, sh.OrderID)
		if err != nil {
			return err
		}
		if err := s.cascadeLocked(ctx, o, to); err != nil {
			return err
		}

		s.audit.Record(ctx, "shipment", sh.ID, audit.ActionShipUpdate, map[string]any{
			"order_id":    sh.OrderID.String(),
			"status_from": string(prev),
			"status_to":   string(to),
		})
		logger.Info(ctx, "shipment status updated",
			"shipment_id", sh.ID, "order_id", sh.OrderID,
			"from", prev, "to", to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Shipment: sh, Order: o}, nil
}
