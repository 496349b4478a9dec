package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/payment"
)

// nopTx runs the function directly; the services under test never nest
// real transactions in unit tests.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memOrderRepo struct {
	orders map[id.ID]*Order
	lines  map[id.ID][]Line
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[id.ID]*Order),
		lines:  make(map[id.ID][]Line),
	}
}

func (r *memOrderRepo) Create(ctx context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *memOrderRepo) Update(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	delete(r.orders, orderID)
	delete(r.lines, orderID)
	return nil
}

func (r *memOrderRepo) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if filter.LiveSessionID != nil && o.LiveSessionID != *filter.LiveSessionID {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.PaymentStatus != nil && o.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrderRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]Order, error) {
	return r.List(ctx, ListFilter{CustomerID: &customerID})
}

func (r *memOrderRepo) FindBySessionAndCustomer(ctx context.Context, sessionID, customerID id.ID) (*Order, error) {
	for _, o := range r.orders {
		if o.LiveSessionID == sessionID && o.CustomerID == customerID &&
			o.PaymentStatus != PaymentPaid {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) ListUnpaidBySession(ctx context.Context, sessionID id.ID) ([]Order, error) {
	unpaid := PaymentUnpaid
	return r.List(ctx, ListFilter{LiveSessionID: &sessionID, PaymentStatus: &unpaid})
}

func (r *memOrderRepo) CreateLine(ctx context.Context, line *Line) error {
	r.lines[line.OrderID] = append(r.lines[line.OrderID], *line)
	return nil
}

func (r *memOrderRepo) DeleteLine(ctx context.Context, lineID id.ID) error {
	for orderID, lines := range r.lines {
		for i, l := range lines {
			if l.ID == lineID {
				r.lines[orderID] = append(lines[:i:i], lines[i+1:]...)
				return nil
			}
		}
	}
	return apperror.NewNotFound("order line", lineID)
}

func (r *memOrderRepo) ListLines(ctx context.Context, orderID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[orderID]...), nil
}

func (r *memOrderRepo) FindLineByClaim(ctx context.Context, claimID id.ID) (*Line, error) {
	for _, lines := range r.lines {
		for _, l := range lines {
			if l.ClaimID != nil && *l.ClaimID == claimID {
				cp := l
				return &cp, nil
			}
		}
	}
	return nil, nil
}

type memPaymentRepo struct {
	payments map[id.ID]*payment.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[id.ID]*payment.Payment)}
}

func (r *memPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID)
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memOrderRepo, *memPaymentRepo) {
	orders := newMemOrderRepo()
	payments := newMemPaymentRepo()
	svc := NewService(orders, payments, nopTx{}, nil)
	return svc, orders, payments
}

func seedOrder(t *testing.T, repo *memOrderRepo, total types.MinorUnits) *Order {
	t.Helper()
	o := New("ORD-2026-00001", id.New(), id.New())
	require.NoError(t, repo.Create(context.Background(), o))
	line := NewLine(o.ID, nil, id.New(), nil, total, 1)
	require.NoError(t, repo.CreateLine(context.Background(), &line))
	return o
}

func TestRecordPayment_PartialThenFull(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	res, err := svc.RecordPayment(ctx, o.ID, PaymentInput{
		Amount: 400,
		Method: payment.MethodGCash,
		Date:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentPartiallyPaid, res.Order.PaymentStatus)
	assert.Equal(t, StatusPartiallyPaid, res.Order.Status)
	assert.Equal(t, types.MinorUnits(600), res.Order.BalanceDue)

	res, err = svc.RecordPayment(ctx, o.ID, PaymentInput{
		Amount: 600,
		Method: payment.MethodCash,
		Date:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, res.Order.PaymentStatus)
	assert.Equal(t, StatusPaid, res.Order.Status)
	assert.Equal(t, types.MinorUnits(0), res.Order.BalanceDue)
	assert.Equal(t, types.MinorUnits(1000), res.Order.AmountPaid)
}

func TestRecordPayment_CancelledOrderRejected(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	stored.Status = StatusCancelled
	require.NoError(t, orders.Update(ctx, stored))

	_, err = svc.RecordPayment(ctx, o.ID, PaymentInput{
		Amount: 400,
		Method: payment.MethodCash,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestVoidPayment_RevertsStatus(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	res, err := svc.RecordPayment(ctx, o.ID, PaymentInput{
		Amount: 1000,
		Method: payment.MethodBankTransfer,
	})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, res.Order.PaymentStatus)

	voided, err := svc.VoidPayment(ctx, res.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusVoided, voided.Payment.Status)
	assert.NotNil(t, voided.Payment.VoidedAt)
	assert.Equal(t, PaymentUnpaid, voided.Order.PaymentStatus)
	assert.Equal(t, StatusPendingPayment, voided.Order.Status)
	assert.Equal(t, types.MinorUnits(1000), voided.Order.BalanceDue)
}

func TestVoidPayment_TwiceFails(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	res, err := svc.RecordPayment(ctx, o.ID, PaymentInput{Amount: 1000, Method: payment.MethodCash})
	require.NoError(t, err)

	_, err = svc.VoidPayment(ctx, res.Payment.ID)
	require.NoError(t, err)

	_, err = svc.VoidPayment(ctx, res.Payment.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePaymentVoided, appErr.Code)
}

func TestVoidPayment_ShippedOrderKeepsStatus(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	res, err := svc.RecordPayment(ctx, o.ID, PaymentInput{Amount: 1000, Method: payment.MethodCash})
	require.NoError(t, err)

	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	stored.Status = StatusShipped
	require.NoError(t, orders.Update(ctx, stored))

	voided, err := svc.VoidPayment(ctx, res.Payment.ID)
	require.NoError(t, err)
	// The fulfillment status survives; only the payment side reverts.
	assert.Equal(t, StatusShipped, voided.Order.Status)
	assert.Equal(t, PaymentUnpaid, voided.Order.PaymentStatus)
}

func TestUpdateFees_Recalculates(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	shipping := types.MinorUnits(250)
	promo := types.MinorUnits(100)
	updated, err := svc.UpdateFees(ctx, o.ID, FeeUpdate{
		ShippingFee:        &shipping,
		PromoDiscountTotal: &promo,
	})
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(1150), updated.GrandTotal)
	assert.Equal(t, types.MinorUnits(1150), updated.BalanceDue)
}

func TestSetStatus_AuditsTransition(t *testing.T) {
	ctx := context.Background()
	svc, orders, _ := newTestService()
	o := seedOrder(t, orders, 1000)

	updated, err := svc.SetStatus(ctx, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)

	_, err = svc.SetStatus(ctx, o.ID, StatusPaid)
	require.Error(t, err)
}
