package order

import (
	"livecart/internal/core/types"
	"livecart/internal/domain/payment"
)

// Recalculate rederives every derived field on the order from its lines
// and payments, in place. It is pure: no I/O, no clock reads.
//
// grandTotal = subtotal - discountTotal - promoDiscountTotal
//            + shippingFee + codFee + otherFees, floored at zero.
// amountPaid sums POSTED payments only; balanceDue never goes negative.
// Payment status is exact integer comparison in minor units. The
// fulfillment status follows the payment status unless the order is
// terminal or in PACKING, both of which belong to the shipment flow and
// manual moves.
func Recalculate(o *Order, lines []Line, payments []payment.Payment) {
	var subtotal, lineDiscounts types.MinorUnits
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(lines[i].Quantity) - lines[i].Discount
		if lines[i].LineTotal.IsNegative() {
			lines[i].LineTotal = 0
		}
		subtotal += lines[i].UnitPrice.Mul(lines[i].Quantity)
		lineDiscounts += lines[i].Discount
	}

	o.Subtotal = subtotal
	o.DiscountTotal = lineDiscounts

	o.GrandTotal = o.Subtotal - o.DiscountTotal - o.PromoDiscountTotal +
		o.ShippingFee + o.CODFee + o.OtherFees
	if o.GrandTotal.IsNegative() {
		o.GrandTotal = 0
	}

	o.AmountPaid = payment.SumPosted(payments)
	o.BalanceDue = o.GrandTotal - o.AmountPaid
	if o.BalanceDue.IsNegative() {
		o.BalanceDue = 0
	}

	switch {
	case o.AmountPaid.IsZero():
		o.PaymentStatus = PaymentUnpaid
	case o.AmountPaid < o.GrandTotal:
		o.PaymentStatus = PaymentPartiallyPaid
	default:
		o.PaymentStatus = PaymentPaid
	}

	if !o.Status.IsTerminal() && o.Status != StatusPacking {
		o.Status = statusForPayment(o.PaymentStatus)
	}
}
