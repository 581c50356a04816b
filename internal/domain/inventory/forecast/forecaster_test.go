package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/product"
)

type stubReader struct {
	consumed types.Quantity
	onHand   types.Quantity
}

func (s *stubReader) ConsumedQuantity(ctx context.Context, productID id.ID, from, to time.Time) (types.Quantity, error) {
	return s.consumed, nil
}

func (s *stubReader) TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return s.onHand, nil
}

func testProduct(leadTimeDays int) *product.Product {
	p := product.New("PRD-001", "Forecastable", "SKU-001", "pcs", product.TrackingNone)
	p.LeadTimeDays = leadTimeDays
	return p
}

func TestComputeReplenishmentWarning(t *testing.T) {
	// 90 units over 30 days with 10 on hand:
	//   avg = 3/day, safety = 9, reorder point = 3*5 + 9 = 24
	//   suggested = 24 - 10 = 14
	reader := &stubReader{
		consumed: types.NewQuantityFromInt(90),
		onHand:   types.NewQuantityFromInt(10),
	}
	f := New(reader, DefaultPolicy())

	r, err := f.ComputeReplenishment(context.Background(), testProduct(5), 30)
	require.NoError(t, err)

	assert.Equal(t, 30, r.WindowDays)
	assert.Equal(t, "3", r.AvgDailyDemand.String())
	assert.Equal(t, types.NewQuantityFromInt(9), r.SafetyStock)
	assert.Equal(t, types.NewQuantityFromInt(24), r.ReorderPoint)
	assert.Equal(t, int64(14), r.SuggestedOrder)
	assert.Equal(t, LevelWarning, r.Level)
}

func TestComputeReplenishmentCritical(t *testing.T) {
	// 600 units over 30 days, nothing on hand: reorder point 160 > threshold.
	reader := &stubReader{consumed: types.NewQuantityFromInt(600)}
	f := New(reader, DefaultPolicy())

	r, err := f.ComputeReplenishment(context.Background(), testProduct(5), 30)
	require.NoError(t, err)

	assert.Equal(t, int64(160), r.SuggestedOrder)
	assert.Equal(t, LevelCritical, r.Level)
}

func TestComputeReplenishmentSafe(t *testing.T) {
	// Well stocked: suggested clamps to zero instead of going negative.
	reader := &stubReader{
		consumed: types.NewQuantityFromInt(30),
		onHand:   types.NewQuantityFromInt(100),
	}
	f := New(reader, DefaultPolicy())

	r, err := f.ComputeReplenishment(context.Background(), testProduct(5), 30)
	require.NoError(t, err)

	assert.Equal(t, int64(0), r.SuggestedOrder)
	assert.Equal(t, LevelSafe, r.Level)
}

func TestComputeReplenishmentNoHistory(t *testing.T) {
	// Missing history degrades to zero demand, not an error.
	f := New(&stubReader{}, DefaultPolicy())

	r, err := f.ComputeReplenishment(context.Background(), testProduct(5), 30)
	require.NoError(t, err)

	assert.True(t, r.AvgDailyDemand.IsZero())
	assert.Equal(t, int64(0), r.SuggestedOrder)
	assert.Equal(t, LevelSafe, r.Level)
}

func TestComputeReplenishmentDefaults(t *testing.T) {
	reader := &stubReader{consumed: types.NewQuantityFromInt(90)}
	f := New(reader, DefaultPolicy())

	// Zero lead time falls back to the policy default; zero window falls back
	// to the policy window.
	r, err := f.ComputeReplenishment(context.Background(), testProduct(0), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy().WindowDays, r.WindowDays)
	assert.Equal(t, types.NewQuantityFromInt(24), r.ReorderPoint)
}

func TestComputeReplenishmentFractionalDemand(t *testing.T) {
	// 10 units over 30 days: avg = 1/3, no float drift in the suggestion.
	reader := &stubReader{consumed: types.NewQuantityFromInt(10)}
	f := New(reader, DefaultPolicy())

	r, err := f.ComputeReplenishment(context.Background(), testProduct(5), 30)
	require.NoError(t, err)

	// reorder point = (10/30)*5 + (10/30)*3 = 8/3 = 2.67 → suggested 3
	assert.Equal(t, int64(3), r.SuggestedOrder)
	assert.Equal(t, LevelWarning, r.Level)
}

func TestComputeReplenishmentNilProduct(t *testing.T) {
	f := New(&stubReader{}, DefaultPolicy())
	_, err := f.ComputeReplenishment(context.Background(), nil, 30)
	require.Error(t, err)
}
