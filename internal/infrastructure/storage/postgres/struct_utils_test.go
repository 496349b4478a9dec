package postgres

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"livecart/internal/core/id"
	"livecart/internal/core/types"
	"livecart/internal/domain/shipment"
)

type timestamps struct {
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type testRow struct {
	timestamps
	ID       id.ID            `db:"id"`
	Name     string           `db:"name"`
	Price    types.MinorUnits `db:"price"`
	Internal string           `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	got := ExtractDBColumns[testRow]()
	want := []string{"created_at", "updated_at", "id", "name", "price"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDBColumnsDomainModel(t *testing.T) {
	got := ExtractDBColumns[shipment.Shipment]()
	want := []string{
		"id", "order_id", "courier", "tracking_number", "status",
		"shipping_cost", "address", "shipped_at", "delivered_at",
		"version", "created_at", "updated_at",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestStructToMap(t *testing.T) {
	rowID := id.New()
	row := testRow{
		timestamps: timestamps{CreatedAt: "2026-08-01", UpdatedAt: "2026-08-02"},
		ID:         rowID,
		Name:       "Scrunchie",
		Price:      2500,
		Internal:   "skipped",
		NoTag:      "skipped",
	}

	got := StructToMap(&row)
	want := map[string]any{
		"created_at": "2026-08-01",
		"updated_at": "2026-08-02",
		"id":         rowID,
		"name":       "Scrunchie",
		"price":      types.MinorUnits(2500),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
}

func TestStructToMapNonStruct(t *testing.T) {
	if m := StructToMap(42); m != nil {
		t.Errorf("expected nil for non-struct, got %v", m)
	}
}
