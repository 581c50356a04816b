package ledger_test

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
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/storage/memory"
)

type fixture struct {
	service   *ledger.Service
	repo      ledger.Repository
	products  *memory.ProductRepo
	warehouse id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	repo := memory.NewLedgerRepo(store)
	service := ledger.NewService(repo, products, memory.NewTxManager(store), nil)
	return &fixture{
		service:   service,
		repo:      repo,
		products:  products,
		warehouse: id.New(),
	}
}

func (f *fixture) addProduct(t *testing.T, tracking product.TrackingType, requiresExpiry bool) id.ID {
	t.Helper()
	p := product.New("PRD-001", "Test product", "SKU-"+id.New().String(), "pcs", tracking)
	p.RequiresExpiry = requiresExpiry
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func lot(code string) *string { return &code }

func inbound(productID, warehouseID id.ID, lotCode *string, qty int64, cost types.MinorUnits, day int) ledger.Movement {
	return ledger.NewMovement(productID, warehouseID, lotCode,
		ledger.KindInboundPurchase, types.NewQuantityFromInt(qty), cost,
		time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		ledger.SourceRef{Type: "goodsReceipt", ID: id.New()})
}

func outbound(productID, warehouseID id.ID, lotCode *string, qty int64, day int) ledger.Movement {
	return ledger.NewMovement(productID, warehouseID, lotCode,
		ledger.KindOutboundSale, types.NewQuantityFromInt(qty), 0,
		time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		ledger.SourceRef{Type: "salesOrder", ID: id.New()})
}

func TestRecordMovementAndOnHand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, nil, 10, 500, 1))
	require.NoError(t, err)
	_, err = f.service.RecordMovement(ctx, outbound(productID, f.warehouse, nil, 4, 2))
	require.NoError(t, err)

	onHand, err := f.service.QuantityOnHand(ctx, productID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), onHand)
}

func TestOutboundExceedingStockRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, nil, 5, 500, 1))
	require.NoError(t, err)

	_, err = f.service.RecordMovement(ctx, outbound(productID, f.warehouse, nil, 8, 2))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "3.0000", appErr.Details["shortfall"])

	// Nothing was written.
	onHand, err := f.service.QuantityOnHand(ctx, productID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(5), onHand)
}

func TestLotCodeRequiredForTrackedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingLot, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, nil, 5, 500, 1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))

	_, err = f.service.RecordMovement(ctx, inbound(productID, f.warehouse, lot("L-001"), 5, 500, 1))
	require.NoError(t, err)
}

func TestExpiryRequiredOnInbound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingLot, true)

	m := inbound(productID, f.warehouse, lot("L-001"), 5, 500, 1)
	_, err := f.service.RecordMovement(ctx, m)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))

	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	m = inbound(productID, f.warehouse, lot("L-001"), 5, 500, 1)
	m.Expiry = &expiry
	_, err = f.service.RecordMovement(ctx, m)
	require.NoError(t, err)
}

func TestPerLotBalanceEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingLot, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, lot("A"), 10, 500, 1))
	require.NoError(t, err)
	_, err = f.service.RecordMovement(ctx, inbound(productID, f.warehouse, lot("B"), 10, 700, 2))
	require.NoError(t, err)

	// 12 from lot A exceeds its 10 even though 20 exist overall.
	_, err = f.service.RecordMovement(ctx, outbound(productID, f.warehouse, lot("A"), 12, 3))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestBatchIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, nil, 10, 500, 1))
	require.NoError(t, err)

	// Second movement of the batch overdraws; the first must not survive.
	batch := []ledger.Movement{
		outbound(productID, f.warehouse, nil, 6, 2),
		outbound(productID, f.warehouse, nil, 6, 2),
	}
	err = f.service.RecordMovements(ctx, batch)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	onHand, err := f.service.QuantityOnHand(ctx, productID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), onHand)
}

func TestCorrectiveShortageIsInvalidLotState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, nil, 3, 500, 1))
	require.NoError(t, err)

	m := ledger.NewMovement(productID, f.warehouse, nil,
		ledger.KindOutboundAdjustment, types.NewQuantityFromInt(5), 0,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ledger.SourceRef{Type: "stocktake", ID: id.New()})
	_, err = f.service.RecordMovement(ctx, m)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))
}

func TestLotsFIFOAndFEFOOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingLot, false)

	late := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	first := inbound(productID, f.warehouse, lot("A"), 10, 500, 1)
	first.Expiry = &late
	second := inbound(productID, f.warehouse, lot("B"), 10, 700, 3)
	second.Expiry = &soon
	require.NoError(t, f.service.RecordMovements(ctx, []ledger.Movement{first, second}))

	fifo, err := f.service.Lots(ctx, productID, f.warehouse, ledger.OrderReceived)
	require.NoError(t, err)
	require.Len(t, fifo, 2)
	assert.Equal(t, "A", *fifo[0].LotCode)

	fefo, err := f.service.Lots(ctx, productID, f.warehouse, ledger.OrderExpiry)
	require.NoError(t, err)
	require.Len(t, fefo, 2)
	assert.Equal(t, "B", *fefo[0].LotCode)
}

func TestExhaustedLotsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingLot, false)

	_, err := f.service.RecordMovement(ctx, inbound(productID, f.warehouse, lot("A"), 5, 500, 1))
	require.NoError(t, err)
	_, err = f.service.RecordMovement(ctx, outbound(productID, f.warehouse, lot("A"), 5, 2))
	require.NoError(t, err)

	lots, err := f.service.Lots(ctx, productID, f.warehouse, ledger.OrderReceived)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestTurnover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	require.NoError(t, f.service.RecordMovements(ctx, []ledger.Movement{
		inbound(productID, f.warehouse, nil, 10, 500, 1), // before window
		inbound(productID, f.warehouse, nil, 5, 500, 10), // in window
		outbound(productID, f.warehouse, nil, 3, 15),     // in window
		inbound(productID, f.warehouse, nil, 7, 500, 25), // after window
	}))

	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	turnover, err := f.service.Turnover(ctx, productID, f.warehouse, from, to)
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromInt(10), turnover.OpeningBalance)
	assert.Equal(t, types.NewQuantityFromInt(5), turnover.Receipts)
	assert.Equal(t, types.NewQuantityFromInt(3), turnover.Expenses)
	assert.Equal(t, types.NewQuantityFromInt(12), turnover.ClosingBalance)
}

func TestReverseCompensatesSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.addProduct(t, product.TrackingNone, false)

	sourceID := id.New()
	m := inbound(productID, f.warehouse, nil, 10, 500, 1)
	m.Source = ledger.SourceRef{Type: "goodsReceipt", ID: sourceID}
	_, err := f.service.RecordMovement(ctx, m)
	require.NoError(t, err)

	reversals, err := f.service.Reverse(ctx, sourceID, ledger.SourceRef{Type: "fulfillmentCancel", ID: id.New()})
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	assert.Equal(t, ledger.KindOutboundAdjustment, reversals[0].Kind)

	onHand, err := f.service.QuantityOnHand(ctx, productID, f.warehouse)
	require.NoError(t, err)
	assert.True(t, onHand.IsZero())
}

func TestReverseUnknownSource(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Reverse(context.Background(), id.New(), ledger.SourceRef{Type: "fulfillmentCancel", ID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
