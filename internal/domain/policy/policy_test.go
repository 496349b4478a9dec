package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaidPredicate(t *testing.T) {
	eng := MustNew(DefaultConfig())

	tests := []struct {
		name  string
		facts OrderFacts
		want  bool
	}{
		{"payment status paid", OrderFacts{PaymentStatus: "PAID", AmountPaid: 0, GrandTotal: 1000}, true},
		{"amount covers total", OrderFacts{PaymentStatus: "PARTIALLY_PAID", AmountPaid: 1000, GrandTotal: 1000}, true},
		{"overpaid", OrderFacts{PaymentStatus: "PARTIALLY_PAID", AmountPaid: 1200, GrandTotal: 1000}, true},
		{"short one unit", OrderFacts{PaymentStatus: "PARTIALLY_PAID", AmountPaid: 999, GrandTotal: 1000}, false},
		{"unpaid", OrderFacts{PaymentStatus: "UNPAID", AmountPaid: 0, GrandTotal: 1000}, false},
		{"zero total unpaid status", OrderFacts{PaymentStatus: "UNPAID", AmountPaid: 0, GrandTotal: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.IsPaid(tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultJoyReservePredicate(t *testing.T) {
	eng := MustNew(DefaultConfig())

	tests := []struct {
		name  string
		facts OrderFacts
		want  bool
	}{
		{"nothing posted", OrderFacts{PaymentStatus: "UNPAID", AmountPaid: 0, GrandTotal: 1000}, true},
		{"partial posted", OrderFacts{PaymentStatus: "PARTIALLY_PAID", AmountPaid: 1, GrandTotal: 1000}, false},
		{"paid", OrderFacts{PaymentStatus: "PAID", AmountPaid: 1000, GrandTotal: 1000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.IsJoyReserve(tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCustomExpressions(t *testing.T) {
	eng, err := New(Config{
		PaidExpr:       `amountPaid > 0`,
		JoyReserveExpr: `status == "PENDING_PAYMENT" && amountPaid == 0`,
	})
	require.NoError(t, err)

	paid, err := eng.IsPaid(OrderFacts{AmountPaid: 1})
	require.NoError(t, err)
	assert.True(t, paid)

	joy, err := eng.IsJoyReserve(OrderFacts{Status: "PENDING_PAYMENT"})
	require.NoError(t, err)
	assert.True(t, joy)

	joy, err = eng.IsJoyReserve(OrderFacts{Status: "PAID"})
	require.NoError(t, err)
	assert.False(t, joy)
}

func TestNewRejectsBadExpressions(t *testing.T) {
	_, err := New(Config{PaidExpr: `paymentStatus ==`, JoyReserveExpr: `true`})
	assert.Error(t, err)

	_, err = New(Config{PaidExpr: `amountPaid`, JoyReserveExpr: `true`})
	assert.Error(t, err, "non-bool expression must be rejected")

	_, err = New(Config{PaidExpr: `true`, JoyReserveExpr: `unknownVar == 1`})
	assert.Error(t, err)
}
