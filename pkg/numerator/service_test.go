package numerator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// mockQuerier emulates the sys_sequences upsert semantics in memory.
type mockQuerier struct {
	calls int
	seqs  map[string]int64
	err   error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{seqs: make(map[string]int64)}
}

func (q *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.calls++
	if q.err != nil {
		return mockRow{err: q.err}
	}
	key := args[0].(string)
	switch {
	case len(args) == 1:
		q.seqs[key]++
	case strings.Contains(sql, "current_val + $2"):
		q.seqs[key] += args[1].(int64)
	default:
		q.seqs[key] = args[1].(int64)
	}
	return mockRow{val: q.seqs[key]}
}

var testPeriod = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestStrictStrategySequential(t *testing.T) {
	ctx := context.Background()
	q := newMockQuerier()
	svc := New(q)
	cfg := DefaultConfig("ORD")

	for i := 1; i <= 3; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, DefaultOptions(), testPeriod)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-2026-%05d", i), num)
	}
	assert.Equal(t, 3, q.calls, "strict strategy hits the database per number")
}

func TestCachedStrategyReservesRanges(t *testing.T) {
	ctx := context.Background()
	q := newMockQuerier()
	svc := New(q)
	cfg := DefaultConfig("ORD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-2026-%05d", i), num)
	}
	assert.Equal(t, 1, q.calls, "one reservation serves the whole range")

	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestSetNextNumberDropsCachedRange(t *testing.T) {
	ctx := context.Background()
	q := newMockQuerier()
	svc := New(q)
	cfg := DefaultConfig("ORD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, testPeriod, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-00101", num)
}

func TestQueryErrorPropagates(t *testing.T) {
	q := newMockQuerier()
	q.err = fmt.Errorf("connection refused")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), DefaultConfig("ORD"), DefaultOptions(), testPeriod)
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		reset string
		want  string
	}{
		{"year", "ORD_2026"},
		{"month", "ORD_2026_03"},
		{"never", "ORD"},
	}
	for _, tt := range tests {
		cfg := Config{Prefix: "ORD", ResetPeriod: tt.reset}
		if got := buildKey(cfg, testPeriod); got != tt.want {
			t.Errorf("buildKey(%s) = %s, want %s", tt.reset, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	withYear := Config{Prefix: "ORD", IncludeYear: true, PadWidth: 5}
	assert.Equal(t, "ORD-2026-00042", formatNumber(withYear, testPeriod, 42))

	noYear := Config{Prefix: "SHP", PadWidth: 3}
	assert.Equal(t, "SHP-042", formatNumber(noYear, testPeriod, 42))

	defaultPad := Config{Prefix: "ORD"}
	assert.Equal(t, "ORD-00042", formatNumber(defaultPad, testPeriod, 42))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("ORD-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("SHP-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestOrderNumbersFormat(t *testing.T) {
	ctx := context.Background()
	q := newMockQuerier()
	gen := NewOrderNumbers(New(q))

	num, err := gen.NextOrderNumber(ctx)
	require.NoError(t, err)
	year := time.Now().Format("2006")
	assert.Equal(t, "ORD-"+year+"-00001", num)
}
