package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livecart/internal/core/apperror"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPendingPayment, StatusPaid, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPendingPayment, StatusReturned, false},
		{StatusPartiallyPaid, StatusPendingPayment, true},
		{StatusPaid, StatusPacking, true},
		{StatusPacking, StatusShipped, true},
		{StatusPacking, StatusPendingPayment, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusReturned, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusReturned, true},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPendingPayment, false},
		{StatusReturned, StatusDelivered, false},
		// Same-status moves are always allowed.
		{StatusPaid, StatusPaid, true},
		{StatusCancelled, StatusCancelled, true},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestTransition_TerminalRejected(t *testing.T) {
	_, err := Transition("o1", StatusCancelled, StatusPaid)
	assert.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeOrderTerminal, appErr.Code)
}

func TestTransition_DisallowedMove(t *testing.T) {
	_, err := Transition("o1", StatusPacking, StatusPartiallyPaid)
	assert.Error(t, err)
}

func TestTransition_SameStatusNoop(t *testing.T) {
	next, err := Transition("o1", StatusPaid, StatusPaid)
	assert.NoError(t, err)
	assert.Equal(t, StatusPaid, next)
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusShipped, StatusDelivered, StatusCancelled, StatusReturned}
	for _, st := range terminal {
		assert.True(t, st.IsTerminal(), "%s", st)
	}
	open := []Status{StatusPendingPayment, StatusPartiallyPaid, StatusPaid, StatusPacking}
	for _, st := range open {
		assert.False(t, st.IsTerminal(), "%s", st)
	}
}
