package claim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/domain/inventory"
)

type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memClaimRepo struct {
	claims map[id.ID]*Claim
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{claims: make(map[id.ID]*Claim)}
}

func (r *memClaimRepo) CreateBatch(ctx context.Context, claims []Claim) error {
	for i := range claims {
		cp := claims[i]
		r.claims[cp.ID] = &cp
	}
	return nil
}

func (r *memClaimRepo) UpdateStatus(ctx context.Context, claimID id.ID, status Status) error {
	cl, ok := r.claims[claimID]
	if !ok {
		return apperror.NewNotFound("claim", claimID)
	}
	cl.Status = status
	return nil
}

func (r *memClaimRepo) GetByID(ctx context.Context, claimID id.ID) (*Claim, error) {
	cl, ok := r.claims[claimID]
	if !ok {
		return nil, apperror.NewNotFound("claim", claimID)
	}
	cp := *cl
	return &cp, nil
}

func (r *memClaimRepo) ListBySession(ctx context.Context, sessionID id.ID) ([]Claim, error) {
	var out []Claim
	for _, cl := range r.claims {
		if cl.LiveSessionID == sessionID {
			out = append(out, *cl)
		}
	}
	return out, nil
}

func (r *memClaimRepo) ListAcceptedBySession(ctx context.Context, sessionID id.ID) ([]Claim, error) {
	var out []Claim
	for _, cl := range r.claims {
		if cl.LiveSessionID == sessionID && cl.Status == StatusAccepted {
			out = append(out, *cl)
		}
	}
	return out, nil
}

func (r *memClaimRepo) CountJoyReserveByCustomer(ctx context.Context, customerID id.ID) (int, error) {
	return 0, nil
}

func (r *memClaimRepo) ListJoyReserveByCustomer(ctx context.Context, customerID id.ID) ([]Claim, error) {
	return nil, nil
}

func (r *memClaimRepo) SetCustomer(ctx context.Context, claimID, customerID id.ID) error {
	cl, ok := r.claims[claimID]
	if !ok {
		return apperror.NewNotFound("claim", claimID)
	}
	cp := customerID
	cl.CustomerID = &cp
	return nil
}

type desyncRecorder struct {
	calls []id.ID
}

func (d *desyncRecorder) RemoveOrderLinesForClaim(ctx context.Context, claimID id.ID) (int, error) {
	d.calls = append(d.calls, claimID)
	return 1, nil
}

type stockCall struct {
	itemID id.ID
	delta  inventory.StockDelta
}

type stockRecorder struct {
	calls []stockCall
}

func (s *stockRecorder) AdjustStock(ctx context.Context, itemID id.ID, delta inventory.StockDelta) (*inventory.Item, error) {
	s.calls = append(s.calls, stockCall{itemID: itemID, delta: delta})
	return nil, nil
}

func newTestService() (*Service, *memClaimRepo, *desyncRecorder, *stockRecorder) {
	repo := newMemClaimRepo()
	stock := &stockRecorder{}
	svc := NewService(repo, stock, nopTx{}, nil)
	desync := &desyncRecorder{}
	svc.SetDesyncer(desync)
	return svc, repo, desync, stock
}

func TestImportBatch_StoresPendingClaims(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	sessionID := id.New()

	claims, err := svc.ImportBatch(ctx, sessionID, []Input{
		{InventoryItemID: id.New(), TemporaryName: "Anna Cruz", Quantity: 2},
		{InventoryItemID: id.New(), TemporaryName: "mika_shops", Quantity: 1, JoyReserve: true},
	})
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, StatusPending, claims[0].Status)
	assert.True(t, claims[1].JoyReserve)
	assert.Len(t, repo.claims, 2)
}

func TestImportBatch_InvalidClaimRejectsBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()

	_, err := svc.ImportBatch(ctx, id.New(), []Input{
		{InventoryItemID: id.New(), TemporaryName: "anna", Quantity: 1},
		{InventoryItemID: id.New(), TemporaryName: "bea", Quantity: 0},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 1, appErr.Details["index"])
	assert.Empty(t, repo.claims)
}

func TestImportBatch_EmptyBatchRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ImportBatch(context.Background(), id.New(), nil)
	assert.Error(t, err)
}

func TestImportBatch_NamelessClaimNeedsCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()
	cid := id.New()

	_, err := svc.ImportBatch(ctx, id.New(), []Input{
		{InventoryItemID: id.New(), CustomerID: &cid, Quantity: 1},
	})
	assert.NoError(t, err)

	_, err = svc.ImportBatch(ctx, id.New(), []Input{
		{InventoryItemID: id.New(), Quantity: 1},
	})
	assert.Error(t, err)
}

func seedClaim(t *testing.T, repo *memClaimRepo, st Status) *Claim {
	t.Helper()
	cl := New(id.New(), id.New(), nil, "anna", 1)
	cl.Status = st
	require.NoError(t, repo.CreateBatch(context.Background(), []Claim{*cl}))
	return cl
}

func TestSetStatus_LeavingAcceptedDesyncsAndReleasesReservation(t *testing.T) {
	ctx := context.Background()
	svc, repo, desync, stock := newTestService()
	cl := seedClaim(t, repo, StatusAccepted)

	got, err := svc.SetStatus(ctx, cl.ID, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	require.Len(t, desync.calls, 1)
	assert.Equal(t, cl.ID, desync.calls[0])
	require.Len(t, stock.calls, 1)
	assert.Equal(t, cl.InventoryItemID, stock.calls[0].itemID)
	assert.Equal(t, inventory.StockDelta{ReservedDelta: -cl.Quantity}, stock.calls[0].delta)
}

func TestSetStatus_AcceptingReservesStock(t *testing.T) {
	ctx := context.Background()
	svc, repo, desync, stock := newTestService()
	cl := seedClaim(t, repo, StatusPending)

	_, err := svc.SetStatus(ctx, cl.ID, StatusAccepted)
	require.NoError(t, err)
	assert.Empty(t, desync.calls)
	require.Len(t, stock.calls, 1)
	assert.Equal(t, cl.InventoryItemID, stock.calls[0].itemID)
	assert.Equal(t, inventory.StockDelta{ReservedDelta: cl.Quantity}, stock.calls[0].delta)
}

func TestSetStatus_RejectingPendingLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	svc, repo, desync, stock := newTestService()
	cl := seedClaim(t, repo, StatusPending)

	_, err := svc.SetStatus(ctx, cl.ID, StatusRejected)
	require.NoError(t, err)
	assert.Empty(t, desync.calls)
	assert.Empty(t, stock.calls)
}

func TestSetStatus_SameStatusNoop(t *testing.T) {
	ctx := context.Background()
	svc, repo, desync, stock := newTestService()
	cl := seedClaim(t, repo, StatusAccepted)

	got, err := svc.SetStatus(ctx, cl.ID, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Empty(t, desync.calls)
	assert.Empty(t, stock.calls)
}

func TestSetStatus_UnknownStatusRejected(t *testing.T) {
	svc, repo, _, _ := newTestService()
	cl := seedClaim(t, repo, StatusPending)

	_, err := svc.SetStatus(context.Background(), cl.ID, Status("SHIPPED"))
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Anna Cruz", "anna cruz"},
		{"  ANNA   cruz ", "anna cruz"},
		{"mika_shops", "mika_shops"},
		{"\tBea\nReyes", "bea reyes"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestVariantKey(t *testing.T) {
	vid := id.New()
	with := New(id.New(), id.New(), &vid, "anna", 1)
	without := New(id.New(), id.New(), nil, "anna", 1)

	assert.Equal(t, vid, with.VariantKey())
	assert.Equal(t, id.Nil(), without.VariantKey())
}
