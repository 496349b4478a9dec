package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/audit"
)

type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memItemRepo struct {
	items map[id.ID]*Item
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[id.ID]*Item)}
}

func (r *memItemRepo) Create(ctx context.Context, item *Item) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("inventory item", itemID)
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) GetForUpdate(ctx context.Context, itemID id.ID) (*Item, error) {
	return r.GetByID(ctx, itemID)
}

func (r *memItemRepo) Update(ctx context.Context, item *Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return apperror.NewNotFound("inventory item", item.ID)
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	var out []Item
	for _, item := range r.items {
		if filter.LowStockOnly && !item.IsLowStock() {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

// auditSpy captures recorded actions for assertions.
type auditSpy struct {
	actions []audit.Action
}

func (a *auditSpy) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) {
	a.actions = append(a.actions, action)
}

func (a *auditSpy) has(action audit.Action) bool {
	for _, got := range a.actions {
		if got == action {
			return true
		}
	}
	return false
}

func seedItem(t *testing.T, repo *memItemRepo, current, reserved int) *Item {
	t.Helper()
	item := NewItem("SKU-1", "Scrunchie", 300, 500)
	item.CurrentStock = current
	item.ReservedStock = reserved
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestAdjustStock_AppliesDeltas(t *testing.T) {
	ctx := context.Background()
	repo := newMemItemRepo()
	spy := &auditSpy{}
	svc := NewService(repo, nopTx{}, spy)
	item := seedItem(t, repo, 10, 4)

	got, err := svc.AdjustStock(ctx, item.ID, StockDelta{CurrentDelta: -3, ReservedDelta: 2})
	require.NoError(t, err)
	assert.Equal(t, 7, got.CurrentStock)
	assert.Equal(t, 6, got.ReservedStock)
	assert.True(t, spy.has(audit.ActionAdjust))
	assert.False(t, spy.has(audit.ActionClamp))
}

func TestAdjustStock_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := newMemItemRepo()
	spy := &auditSpy{}
	svc := NewService(repo, nopTx{}, spy)
	item := seedItem(t, repo, 2, 1)

	got, err := svc.AdjustStock(ctx, item.ID, StockDelta{CurrentDelta: -5, ReservedDelta: -5})
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStock)
	assert.Equal(t, 0, got.ReservedStock)
	assert.True(t, spy.has(audit.ActionClamp))
	assert.True(t, spy.has(audit.ActionAdjust))
}

func TestAdjustStock_UnknownItem(t *testing.T) {
	svc := NewService(newMemItemRepo(), nopTx{}, nil)
	_, err := svc.AdjustStock(context.Background(), id.New(), StockDelta{CurrentDelta: 1})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RejectsInvalidItem(t *testing.T) {
	svc := NewService(newMemItemRepo(), nopTx{}, nil)

	item := NewItem("SKU-1", "", 100, 200)
	assert.Error(t, svc.Create(context.Background(), item))

	item = NewItem("SKU-2", "Tote", -1, 200)
	assert.Error(t, svc.Create(context.Background(), item))
}

func TestListLowStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemItemRepo()
	svc := NewService(repo, nopTx{}, nil)

	low := seedItem(t, repo, 2, 0)
	low.LowStockThreshold = 5
	require.NoError(t, repo.Update(ctx, low))
	seedItem(t, repo, 50, 0)

	items, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}

func TestEffectivePrice(t *testing.T) {
	item := NewItem("SKU-1", "Shirt", 100, 200)
	vCost := types.MinorUnits(150)
	vPrice := types.MinorUnits(250)
	full := id.New()
	partial := id.New()
	item.Variants = Variants{
		{ID: full, Name: "XL", CostPrice: &vCost, SellingPrice: &vPrice},
		{ID: partial, Name: "M", SellingPrice: &vPrice},
	}

	cost, price := EffectivePrice(item, nil)
	assert.Equal(t, types.MinorUnits(100), cost)
	assert.Equal(t, types.MinorUnits(200), price)

	cost, price = EffectivePrice(item, &full)
	assert.Equal(t, vCost, cost)
	assert.Equal(t, vPrice, price)

	// Missing override falls back to the item price.
	cost, price = EffectivePrice(item, &partial)
	assert.Equal(t, types.MinorUnits(100), cost)
	assert.Equal(t, vPrice, price)

	unknown := id.New()
	cost, price = EffectivePrice(item, &unknown)
	assert.Equal(t, types.MinorUnits(100), cost)
	assert.Equal(t, types.MinorUnits(200), price)
}
