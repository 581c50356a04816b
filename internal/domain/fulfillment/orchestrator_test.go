package fulfillment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/accounting/period"
	"kardex/internal/domain/accounting/rules"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/domain/inventory/allocation"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/storage/memory"
	"kardex/pkg/numerator"
)

type rig struct {
	orchestrator *fulfillment.Orchestrator
	stock        *ledger.Service
	entries      *memory.JournalRepo
	accounts     *memory.AccountRepo

	productID   id.ID
	warehouseID id.ID

	inventory  *account.LedgerAccount
	cogs       *account.LedgerAccount
	receivable *account.LedgerAccount
	revenue    *account.LedgerAccount
	cash       *account.LedgerAccount
}

func testAccounts() fulfillment.Accounts {
	return fulfillment.Accounts{
		InventoryCode:  "1150",
		COGSCode:       "5100",
		ReceivableCode: "1120",
		RevenueCode:    "4100",
	}
}

func newRig(t *testing.T) *rig {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	accounts := memory.NewAccountRepo(store)
	entries := memory.NewJournalRepo(store)
	txManager := memory.NewTxManager(store)

	stock := ledger.NewService(memory.NewLedgerRepo(store), products, txManager, nil)
	engine := journal.NewEngine(entries, accounts, numerator.New(memory.NewSequenceStore(store)),
		period.NewOpenPolicy(), txManager, nil)

	rulesEngine, err := rules.NewEngine([]rules.Rule{
		{Name: "cash-sale", When: `"paymentMethod" in source && source.paymentMethod == "cash"`, Account: "1110"},
	}, "1120")
	require.NoError(t, err)

	r := &rig{
		orchestrator: fulfillment.NewOrchestrator(
			allocation.NewSelector(stock), stock, engine, accounts, rulesEngine, txManager),
		stock:    stock,
		entries:  entries,
		accounts: accounts,
	}

	ctx := context.Background()
	r.inventory = account.New("1150", "Inventario", account.TypeAsset, account.NatureDebit)
	r.cogs = account.New("5100", "Costo de ventas", account.TypeCost, account.NatureDebit)
	r.receivable = account.New("1120", "Clientes", account.TypeAsset, account.NatureDebit)
	r.revenue = account.New("4100", "Ventas", account.TypeIncome, account.NatureCredit)
	r.cash = account.New("1110", "Caja", account.TypeAsset, account.NatureDebit)
	for _, a := range []*account.LedgerAccount{r.inventory, r.cogs, r.receivable, r.revenue, r.cash} {
		require.NoError(t, accounts.Create(ctx, a))
	}

	p := product.New("PRD-001", "Vendible", "SKU-001", "pcs", product.TrackingLot)
	require.NoError(t, products.Create(ctx, p))
	r.productID = p.ID
	r.warehouseID = id.New()

	r.receive(t, "A", 10, 500, 1)
	r.receive(t, "B", 10, 700, 3)
	return r
}

func (r *rig) receive(t *testing.T, lotCode string, qty int64, cost types.MinorUnits, day int) {
	t.Helper()
	code := lotCode
	m := ledger.NewMovement(r.productID, r.warehouseID, &code,
		ledger.KindInboundPurchase, types.NewQuantityFromInt(qty), cost,
		time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
		ledger.SourceRef{Type: "goodsReceipt", ID: id.New()})
	_, err := r.stock.RecordMovement(context.Background(), m)
	require.NoError(t, err)
}

func (r *rig) order(qty int64, price types.MinorUnits) fulfillment.Order {
	return fulfillment.Order{
		SourceType:  "salesOrder",
		SourceID:    id.New(),
		SourceFolio: "SO-0001",
		Concept:     "Venta de mercancía",
		Date:        time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
		Lines: []fulfillment.LineRequest{
			{ProductID: r.productID, WarehouseID: r.warehouseID, Quantity: types.NewQuantityFromInt(qty), UnitPrice: price},
		},
	}
}

func (r *rig) balance(t *testing.T, a *account.LedgerAccount) types.MinorUnits {
	t.Helper()
	got, err := r.accounts.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	return got.Balance
}

func TestFulfillCommitsStockAndEntry(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	result, err := r.orchestrator.Fulfill(ctx, r.order(15, 2000), testAccounts())
	require.NoError(t, err)

	assert.Equal(t, fulfillment.StateCommitted, result.State)
	// 10 @ 5.00 from lot A plus 5 @ 7.00 from lot B.
	assert.Equal(t, types.MinorUnits(8500), result.COGS)
	assert.Equal(t, types.MinorUnits(30000), result.Revenue)
	require.Len(t, result.Movements, 2)
	require.NotNil(t, result.Entry)
	assert.Equal(t, "POL-202605-0001", result.Entry.Folio)
	assert.True(t, result.Entry.AutoPosted)

	onHand, err := r.stock.QuantityOnHand(ctx, r.productID, r.warehouseID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(5), onHand)

	assert.Equal(t, types.MinorUnits(8500), r.balance(t, r.cogs))
	assert.Equal(t, types.MinorUnits(-8500), r.balance(t, r.inventory))
	assert.Equal(t, types.MinorUnits(30000), r.balance(t, r.receivable))
	assert.Equal(t, types.MinorUnits(30000), r.balance(t, r.revenue))
}

func TestFulfillShortageRejectsWithoutWrites(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	result, err := r.orchestrator.Fulfill(ctx, r.order(25, 2000), testAccounts())
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	require.NotNil(t, result)
	assert.Equal(t, fulfillment.StateRejected, result.State)
	assert.NotEmpty(t, result.Reason)

	// No stock consumed, no entry posted, no folio drawn.
	onHand, err := r.stock.QuantityOnHand(ctx, r.productID, r.warehouseID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(20), onHand)

	committed, err := r.orchestrator.Fulfill(ctx, r.order(5, 2000), testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "POL-202605-0001", committed.Entry.Folio)
}

func TestFulfillCashRuleSelectsDebitAccount(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	order := r.order(5, 2000)
	order.Attributes = map[string]any{"paymentMethod": "cash"}

	result, err := r.orchestrator.Fulfill(ctx, order, testAccounts())
	require.NoError(t, err)
	assert.Equal(t, fulfillment.StateCommitted, result.State)

	assert.Equal(t, types.MinorUnits(10000), r.balance(t, r.cash))
	assert.True(t, r.balance(t, r.receivable).IsZero())
}

func TestFulfillDefaultsToReceivable(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	_, err := r.orchestrator.Fulfill(ctx, r.order(5, 2000), testAccounts())
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(10000), r.balance(t, r.receivable))
	assert.True(t, r.balance(t, r.cash).IsZero())
}

func TestCancelReversesStockAndVoidsEntry(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	order := r.order(15, 2000)
	result, err := r.orchestrator.Fulfill(ctx, order, testAccounts())
	require.NoError(t, err)

	require.NoError(t, r.orchestrator.Cancel(ctx, order.SourceID, "customer returned"))

	onHand, err := r.stock.QuantityOnHand(ctx, r.productID, r.warehouseID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(20), onHand)

	voided, err := r.entries.GetByID(ctx, result.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusVoid, voided.Status)

	for _, a := range []*account.LedgerAccount{r.inventory, r.cogs, r.receivable, r.revenue} {
		assert.True(t, r.balance(t, a).IsZero(), a.Code)
	}
}

func TestCancelUnknownSource(t *testing.T) {
	r := newRig(t)
	err := r.orchestrator.Cancel(context.Background(), id.New(), "nothing to cancel")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFulfillValidation(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	_, err := r.orchestrator.Fulfill(ctx, fulfillment.Order{}, testAccounts())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = r.orchestrator.Fulfill(ctx, r.order(5, 2000), fulfillment.Accounts{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	order := r.order(5, 2000)
	order.Lines[0].Quantity = types.NewQuantityFromInt(0)
	_, err = r.orchestrator.Fulfill(ctx, order, testAccounts())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
