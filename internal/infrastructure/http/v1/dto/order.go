package dto

import (
	"time"

	"livecart/internal/core/apperror"
	"livecart/internal/core/types"
	"livecart/internal/domain/order"
	"livecart/internal/domain/payment"
)

// ListOrdersQuery contains order list filters.
type ListOrdersQuery struct {
	PageRequest
	SessionID     string     `form:"sessionId"`
	CustomerID    string     `form:"customerId"`
	Status        string     `form:"status"`
	PaymentStatus string     `form:"paymentStatus"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
}

// ToFilter converts query to a domain list filter.
func (q *ListOrdersQuery) ToFilter() (order.ListFilter, error) {
	q.Defaults()
	filter := order.ListFilter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	var err error
	if filter.LiveSessionID, err = parseOptionalID(optStr(q.SessionID)); err != nil {
		return filter, apperror.NewValidation("invalid session id")
	}
	if filter.CustomerID, err = parseOptionalID(optStr(q.CustomerID)); err != nil {
		return filter, apperror.NewValidation("invalid customer id")
	}
	if q.Status != "" {
		st := order.Status(q.Status)
		if !st.IsValid() {
			return filter, apperror.NewValidation("unknown order status").WithDetail("status", q.Status)
		}
		filter.Status = &st
	}
	if q.PaymentStatus != "" {
		ps := order.PaymentStatus(q.PaymentStatus)
		filter.PaymentStatus = &ps
	}
	return filter, nil
}

// UpdateFeesRequest adjusts order-level fees and discounts.
type UpdateFeesRequest struct {
	PromoDiscountTotal *int64  `json:"promoDiscountTotal,omitempty" binding:"omitempty,gte=0"`
	ShippingFee        *int64  `json:"shippingFee,omitempty" binding:"omitempty,gte=0"`
	CODFee             *int64  `json:"codFee,omitempty" binding:"omitempty,gte=0"`
	OtherFees          *int64  `json:"otherFees,omitempty" binding:"omitempty,gte=0"`
	Notes              *string `json:"notes,omitempty"`
}

// ToFeeUpdate converts request to a domain fee update.
func (r *UpdateFeesRequest) ToFeeUpdate() order.FeeUpdate {
	return order.FeeUpdate{
		PromoDiscountTotal: minorUnitsPtr(r.PromoDiscountTotal),
		ShippingFee:        minorUnitsPtr(r.ShippingFee),
		CODFee:             minorUnitsPtr(r.CODFee),
		OtherFees:          minorUnitsPtr(r.OtherFees),
		Notes:              r.Notes,
	}
}

// SetOrderStatusRequest represents a manual status change.
type SetOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RecordPaymentRequest posts a payment against an order.
type RecordPaymentRequest struct {
	Amount    int64      `json:"amount" binding:"required,gt=0"`
	Method    string     `json:"method" binding:"required"`
	Date      *time.Time `json:"date,omitempty"`
	Reference string     `json:"reference,omitempty"`
}

// ToPaymentInput converts request to a domain payment input.
func (r *RecordPaymentRequest) ToPaymentInput() order.PaymentInput {
	in := order.PaymentInput{
		Amount:    types.MinorUnits(r.Amount),
		Method:    payment.Method(r.Method),
		Reference: r.Reference,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
