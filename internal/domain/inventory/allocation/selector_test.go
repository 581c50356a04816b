package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/inventory/allocation"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/storage/memory"
)

type env struct {
	selector    *allocation.Selector
	stock       *ledger.Service
	productID   id.ID
	warehouseID id.ID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	stock := ledger.NewService(memory.NewLedgerRepo(store), products, memory.NewTxManager(store), nil)

	p := product.New("PRD-001", "Allocatable", "SKU-001", "pcs", product.TrackingLot)
	require.NoError(t, products.Create(context.Background(), p))

	return &env{
		selector:    allocation.NewSelector(stock),
		stock:       stock,
		productID:   p.ID,
		warehouseID: id.New(),
	}
}

func (e *env) receive(t *testing.T, lotCode string, qty int64, cost types.MinorUnits, day int, expiry *time.Time) {
	t.Helper()
	code := lotCode
	m := ledger.NewMovement(e.productID, e.warehouseID, &code,
		ledger.KindInboundPurchase, types.NewQuantityFromInt(qty), cost,
		time.Date(2026, 4, day, 0, 0, 0, 0, time.UTC),
		ledger.SourceRef{Type: "goodsReceipt", ID: id.New()})
	m.Expiry = expiry
	_, err := e.stock.RecordMovement(context.Background(), m)
	require.NoError(t, err)
}

func TestAllocateFIFOSpansLots(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "A", 10, 500, 1, nil)
	e.receive(t, "B", 10, 700, 3, nil)

	plan, err := e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
		types.NewQuantityFromInt(15), allocation.PolicyFIFO)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, "A", *plan.Lines[0].Lot.LotCode)
	assert.Equal(t, types.NewQuantityFromInt(10), plan.Lines[0].Quantity)
	assert.Equal(t, "B", *plan.Lines[1].Lot.LotCode)
	assert.Equal(t, types.NewQuantityFromInt(5), plan.Lines[1].Quantity)

	// 10 @ 5.00 + 5 @ 7.00 = 85.00
	assert.Equal(t, types.MinorUnits(8500), plan.Cost())
}

func TestAllocateFEFOPrefersSoonestExpiry(t *testing.T) {
	e := newEnv(t)
	late := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e.receive(t, "OLD", 10, 500, 1, &late)
	e.receive(t, "FRESH", 10, 700, 3, &soon)

	plan, err := e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
		types.NewQuantityFromInt(5), allocation.PolicyFEFO)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, "FRESH", *plan.Lines[0].Lot.LotCode)
}

func TestAllocateShortfall(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "A", 10, 500, 1, nil)

	_, err := e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
		types.NewQuantityFromInt(15), allocation.PolicyFIFO)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "15.0000", appErr.Details["requested"])
	assert.Equal(t, "10.0000", appErr.Details["available"])
	assert.Equal(t, "5.0000", appErr.Details["shortfall"])
}

func TestAllocateValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
		types.NewQuantityFromInt(0), allocation.PolicyFIFO)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
		types.NewQuantityFromInt(1), allocation.Policy("LIFO"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAllocateIsAdvisory(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "A", 10, 500, 1, nil)

	// Two consecutive plans for the full quantity both succeed: allocation
	// reserves nothing.
	for i := 0; i < 2; i++ {
		plan, err := e.selector.Allocate(context.Background(), e.productID, e.warehouseID,
			types.NewQuantityFromInt(10), allocation.PolicyFIFO)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromInt(10), plan.Lines[0].Quantity)
	}
}
