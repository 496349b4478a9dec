package order

import "livecart/internal/core/apperror"

// Status is the fulfillment lifecycle state of an order.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPartiallyPaid  Status = "PARTIALLY_PAID"
	StatusPaid           Status = "PAID"
	StatusPacking        Status = "PACKING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusReturned       Status = "RETURNED"
)

// PaymentStatus is the derived payment state of an order.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
)

// IsTerminal reports whether payment-driven recalculation must leave the
// fulfillment status alone. Once an order is on its way out the door (or
// cancelled) a payment no longer moves it back to PAID.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPartiallyPaid, StatusPaid,
		StatusPacking, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// transitions is the set of allowed manual and shipment-driven status
// moves. Payment-driven moves between the three payment statuses are
// handled by the recalculator, not this table.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPartiallyPaid, StatusPaid, StatusPacking, StatusShipped, StatusDelivered, StatusCancelled},
	StatusPartiallyPaid:  {StatusPendingPayment, StatusPaid, StatusPacking, StatusShipped, StatusDelivered, StatusCancelled},
	StatusPaid:           {StatusPendingPayment, StatusPartiallyPaid, StatusPacking, StatusShipped, StatusDelivered, StatusCancelled},
	StatusPacking:        {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:        {StatusDelivered, StatusReturned},
	StatusDelivered:      {StatusReturned},
	StatusCancelled:      {},
	StatusReturned:       {},
}

// CanTransition reports whether moving from -> to is allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a status move and returns the target status, or a
// terminal/business-rule error when the move is not allowed.
func Transition(orderID string, from, to Status) (Status, error) {
	if !to.IsValid() {
		return from, apperror.NewValidation("unknown order status").
			WithDetail("status", string(to))
	}
	if !CanTransition(from, to) {
		if from.IsTerminal() {
			return from, apperror.NewOrderTerminal(orderID, string(from), string(to))
		}
		return from, apperror.NewBusinessRule(apperror.CodeBusinessRule, "status transition not allowed").
			WithDetail("from", string(from)).
			WithDetail("to", string(to))
	}
	return to, nil
}

// statusForPayment maps a derived payment status onto a fulfillment
// status for non-terminal orders.
func statusForPayment(ps PaymentStatus) Status {
	switch ps {
	case PaymentPaid:
		return StatusPaid
	case PaymentPartiallyPaid:
		return StatusPartiallyPaid
	default:
		return StatusPendingPayment
	}
}
