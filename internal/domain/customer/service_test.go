package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/order"
	"livecart/internal/domain/policy"
)

type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memCustomerRepo struct {
	customers map[id.ID]*Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[id.ID]*Customer)}
}

func (r *memCustomerRepo) Create(ctx context.Context, c *Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error) {
	return r.GetByID(ctx, customerID)
}

func (r *memCustomerRepo) FindByNormalizedName(ctx context.Context, normalized string) (*Customer, error) {
	for _, c := range r.customers {
		if c.NormalizedName == normalized {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCustomerRepo) Update(ctx context.Context, c *Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

// stubOrderRepo only serves ListByCustomer; the service touches nothing
// else here.
type stubOrderRepo struct {
	order.Repository
	orders []order.Order
}

func (r *stubOrderRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubClaimRepo struct {
	claim.Repository
	flagged []claim.Claim
}

func (r *stubClaimRepo) CountJoyReserveByCustomer(ctx context.Context, customerID id.ID) (int, error) {
	n := 0
	for _, cl := range r.flagged {
		if cl.CustomerID != nil && *cl.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *stubClaimRepo) ListJoyReserveByCustomer(ctx context.Context, customerID id.ID) ([]claim.Claim, error) {
	var out []claim.Claim
	for _, cl := range r.flagged {
		if cl.CustomerID != nil && *cl.CustomerID == customerID {
			out = append(out, cl)
		}
	}
	return out, nil
}

type env struct {
	svc       *Service
	repo      *memCustomerRepo
	orderRepo *stubOrderRepo
	claimRepo *stubClaimRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := newMemCustomerRepo()
	orders := &stubOrderRepo{}
	claims := &stubClaimRepo{}
	eng := policy.MustNew(policy.DefaultConfig())
	svc := NewService(repo, orders, claims, eng, nopTx{}, nil)
	return &env{svc: svc, repo: repo, orderRepo: orders, claimRepo: claims}
}

func (e *env) seedCustomer(t *testing.T, name string) *Customer {
	t.Helper()
	c := New(name)
	require.NoError(t, e.repo.Create(context.Background(), c))
	return c
}

// addOrder appends an order snapshot for the customer. AmountPaid and the
// statuses are set directly; the stats recomputer only reads them.
func (e *env) addOrder(customerID id.ID, st order.Status, ps order.PaymentStatus, grand, paid types.MinorUnits, createdAt time.Time) {
	o := order.New("ORD-2026-00001", customerID, id.New())
	o.Status = st
	o.PaymentStatus = ps
	o.GrandTotal = grand
	o.AmountPaid = paid
	o.BalanceDue = grand - paid
	if o.BalanceDue.IsNegative() {
		o.BalanceDue = 0
	}
	o.CreatedAt = createdAt
	e.orderRepo.orders = append(e.orderRepo.orders, *o)
}

func TestRecomputeStats_Aggregates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Anna Cruz")

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}
	e.addOrder(c.ID, order.StatusDelivered, order.PaymentPaid, 1000, 1000, day(1))
	e.addOrder(c.ID, order.StatusPartiallyPaid, order.PaymentPartiallyPaid, 2000, 500, day(5))
	e.addOrder(c.ID, order.StatusPendingPayment, order.PaymentUnpaid, 800, 0, day(10))
	e.addOrder(c.ID, order.StatusCancelled, order.PaymentUnpaid, 9999, 0, day(3))

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 1, got.TotalPaidOrders)
	assert.Equal(t, types.MinorUnits(1000), got.TotalSpent)
	assert.Equal(t, types.MinorUnits(2300), got.OutstandingBalance)
	require.NotNil(t, got.FirstOrderAt)
	require.NotNil(t, got.LastOrderAt)
	assert.Equal(t, day(1), *got.FirstOrderAt)
	assert.Equal(t, day(10), *got.LastOrderAt)
	// The unpaid zero-posted order is the only joy-reserve qualifier.
	assert.Equal(t, 1, got.JoyReserveCount)
}

func TestRecomputeStats_OverpaidCountsAsPaid(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Bea Reyes")

	// Payment status lagging but the posted amount covers the total.
	e.addOrder(c.ID, order.StatusPartiallyPaid, order.PaymentPartiallyPaid, 1000, 1200, time.Now().UTC())

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalPaidOrders)
	assert.Equal(t, types.MinorUnits(1000), got.TotalSpent)
}

func TestRecomputeStats_TerminalJoyOrdersExcluded(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Carla Tan")

	// Unpaid and abandoned, but already in a terminal state: the order no
	// longer marks the buyer.
	e.addOrder(c.ID, order.StatusReturned, order.PaymentUnpaid, 500, 0, time.Now().UTC())
	e.addOrder(c.ID, order.StatusPendingPayment, order.PaymentUnpaid, 700, 0, time.Now().UTC())

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.JoyReserveCount)
}

func TestRecomputeStats_AddsFlaggedClaims(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Dina Lopez")

	e.addOrder(c.ID, order.StatusPendingPayment, order.PaymentUnpaid, 700, 0, time.Now().UTC())
	cid := c.ID
	e.claimRepo.flagged = []claim.Claim{
		{ID: id.New(), CustomerID: &cid, JoyReserve: true},
		{ID: id.New(), CustomerID: &cid, JoyReserve: true},
	}

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.JoyReserveCount)
}

func TestRecomputeStats_ReturnedOrderOwesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Elsa Uy")

	e.addOrder(c.ID, order.StatusReturned, order.PaymentPartiallyPaid, 1000, 300, time.Now().UTC())

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(0), got.OutstandingBalance)
}

func TestRecomputeStats_NoOrdersResets(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Faye Sy")
	c.TotalOrders = 7
	c.TotalSpent = 12345
	require.NoError(t, e.repo.Update(ctx, c))

	require.NoError(t, e.svc.RecomputeStats(ctx, c.ID))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalOrders)
	assert.Equal(t, types.MinorUnits(0), got.TotalSpent)
	assert.Nil(t, got.FirstOrderAt)
	assert.Nil(t, got.LastOrderAt)
}

func TestLookupOrCreate_MatchesByNormalizedName(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.svc.LookupOrCreate(ctx, "Anna Cruz")
	require.NoError(t, err)

	second, err := e.svc.LookupOrCreate(ctx, "  ANNA   cruz ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, e.repo.customers, 1)
}

func TestUpdate_RenormalizesName(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.seedCustomer(t, "Anna Cruz")

	c.Name = "Anna Cruz-Santos"
	require.NoError(t, e.svc.Update(ctx, c))

	got, err := e.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, claim.NormalizeName("Anna Cruz-Santos"), got.NormalizedName)
}
