package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/order"
	"livecart/internal/domain/payment"
)

func TestRemoveOrderLinesForClaim_DeletesEmptiedOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 2)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	affected, err := e.svc.RemoveOrderLinesForClaim(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// The only line is gone, so the order is too.
	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The stock and its reservation came back.
	stored, err := e.inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.CurrentStock)
	assert.Equal(t, 10, stored.ReservedStock)
}

func TestRemoveOrderLinesForClaim_RecalculatesSurvivingOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 2)
	e.addClaim(t, sessionID, item, "anna", 1)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	affected, err := e.svc.RemoveOrderLinesForClaim(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, types.MinorUnits(1000), orders[0].GrandTotal)
}

func TestRemoveOrderLinesForClaim_SkipsOrderWithPayments(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 2)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = e.ordersvc.RecordPayment(ctx, orders[0].ID, order.PaymentInput{
		Amount: 500,
		Method: payment.MethodCash,
	})
	require.NoError(t, err)

	affected, err := e.svc.RemoveOrderLinesForClaim(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, affected, "partially paid orders keep their lines")

	lines, err := e.orders.ListLines(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestRemoveOrderLinesForClaim_MatchesLegacyUntaggedLine(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 2)

	custID := id.New()
	require.NoError(t, e.claims.SetCustomer(ctx, cl.ID, custID))

	// An order whose line predates claim tagging: no claim reference.
	o := order.New("ORD-LEGACY-1", custID, sessionID)
	require.NoError(t, e.orders.Create(ctx, o))
	line := order.NewLine(o.ID, nil, item.ID, nil, 1000, 2)
	require.NoError(t, e.orders.CreateLine(ctx, &line))

	affected, err := e.svc.RemoveOrderLinesForClaim(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSyncUnpaidOrdersForSession_RemovesOrphanedLines(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	kept := e.addClaim(t, sessionID, item, "anna", 1)
	dropped := e.addClaim(t, sessionID, item, "anna", 2)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	// Withdraw one claim behind the engine's back, then reconcile.
	require.NoError(t, e.claims.UpdateStatus(ctx, dropped.ID, claim.StatusRejected))

	affected, err := e.svc.SyncUnpaidOrdersForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, types.MinorUnits(1000), orders[0].GrandTotal)

	lines, err := e.orders.ListLines(ctx, orders[0].ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.Quantity, lines[0].Quantity)

	// Two units returned to stock.
	stored, err := e.inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.CurrentStock)
}

func TestSyncUnpaidOrdersForSession_DeletesEmptiedOrders(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 1)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	require.NoError(t, e.claims.UpdateStatus(ctx, cl.ID, claim.StatusCancelled))

	affected, err := e.svc.SyncUnpaidOrdersForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSyncUnpaidOrdersForSession_LeavesPaidOrdersAlone(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	sessionID := id.New()

	item := e.addItem(t, 1000, 10)
	cl := e.addClaim(t, sessionID, item, "anna", 1)

	_, err := e.svc.BuildOrdersFromClaims(ctx, sessionID)
	require.NoError(t, err)

	orders, err := e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = e.ordersvc.RecordPayment(ctx, orders[0].ID, order.PaymentInput{
		Amount: 1000,
		Method: payment.MethodGCash,
	})
	require.NoError(t, err)

	require.NoError(t, e.claims.UpdateStatus(ctx, cl.ID, claim.StatusRejected))

	affected, err := e.svc.SyncUnpaidOrdersForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)

	orders, err = e.orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
