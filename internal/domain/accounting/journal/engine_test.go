package journal_test

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
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/infrastructure/storage/memory"
	"kardex/pkg/numerator"
)

type bench struct {
	engine   *journal.Engine
	replayer *journal.Replayer
	accounts *memory.AccountRepo
	entries  *memory.JournalRepo

	inventory  *account.LedgerAccount
	cogs       *account.LedgerAccount
	receivable *account.LedgerAccount
	revenue    *account.LedgerAccount
}

func newBench(t *testing.T, periods period.Policy) *bench {
	t.Helper()
	store := memory.NewStore()
	accounts := memory.NewAccountRepo(store)
	entries := memory.NewJournalRepo(store)
	txManager := memory.NewTxManager(store)
	num := numerator.New(memory.NewSequenceStore(store))

	if periods == nil {
		periods = period.NewOpenPolicy()
	}

	b := &bench{
		engine:   journal.NewEngine(entries, accounts, num, periods, txManager, nil),
		replayer: journal.NewReplayer(entries, accounts, txManager),
		accounts: accounts,
		entries:  entries,
	}

	ctx := context.Background()
	b.inventory = account.New("1150", "Inventario", account.TypeAsset, account.NatureDebit)
	b.cogs = account.New("5100", "Costo de ventas", account.TypeCost, account.NatureDebit)
	b.receivable = account.New("1120", "Clientes", account.TypeAsset, account.NatureDebit)
	b.revenue = account.New("4100", "Ventas", account.TypeIncome, account.NatureCredit)
	for _, a := range []*account.LedgerAccount{b.inventory, b.cogs, b.receivable, b.revenue} {
		require.NoError(t, accounts.Create(ctx, a))
	}
	return b
}

func (b *bench) salesDraft(date time.Time, cogs, revenue types.MinorUnits) journal.Draft {
	return journal.Draft{
		Date:    date,
		Concept: "Venta de mercancía",
		Movements: []journal.Movement{
			{AccountID: b.cogs.ID, Side: account.SideDebit, Amount: cogs},
			{AccountID: b.inventory.ID, Side: account.SideCredit, Amount: cogs},
			{AccountID: b.receivable.ID, Side: account.SideDebit, Amount: revenue},
			{AccountID: b.revenue.ID, Side: account.SideCredit, Amount: revenue},
		},
		SourceType: "salesOrder",
		SourceID:   id.New(),
	}
}

func (b *bench) balance(t *testing.T, accountID id.ID) (types.MinorUnits, int64) {
	t.Helper()
	a, err := b.accounts.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	return a.Balance, a.MovementCount
}

var mayDate = time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

func TestPostBalancedEntry(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	entry, err := b.engine.Post(ctx, b.salesDraft(mayDate, 8500, 18500))
	require.NoError(t, err)

	assert.Equal(t, "POL-202605-0001", entry.Folio)
	assert.Equal(t, journal.TypeIngresos, entry.Type)
	assert.Equal(t, journal.StatusPosted, entry.Status)
	assert.Equal(t, types.MinorUnits(27000), entry.TotalDebit)
	assert.Equal(t, entry.TotalDebit, entry.TotalCredit)

	// Account codes are filled during posting.
	assert.Equal(t, "5100", entry.Movements[0].AccountCode)

	// Nature-aware balances: debit-normal rise on debit, credit-normal on credit.
	balance, count := b.balance(t, b.cogs.ID)
	assert.Equal(t, types.MinorUnits(8500), balance)
	assert.Equal(t, int64(1), count)

	balance, _ = b.balance(t, b.inventory.ID)
	assert.Equal(t, types.MinorUnits(-8500), balance)

	balance, _ = b.balance(t, b.receivable.ID)
	assert.Equal(t, types.MinorUnits(18500), balance)

	balance, _ = b.balance(t, b.revenue.ID)
	assert.Equal(t, types.MinorUnits(18500), balance)
}

func TestFoliosAreSequentialPerMonth(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	first, err := b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.NoError(t, err)
	second, err := b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.NoError(t, err)
	june, err := b.engine.Post(ctx, b.salesDraft(mayDate.AddDate(0, 1, 0), 100, 200))
	require.NoError(t, err)

	assert.Equal(t, "POL-202605-0001", first.Folio)
	assert.Equal(t, "POL-202605-0002", second.Folio)
	assert.Equal(t, "POL-202606-0001", june.Folio)
}

func TestUnbalancedEntryRejected(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	draft := b.salesDraft(mayDate, 8500, 18500)
	draft.Movements[3].Amount = 18400

	_, err := b.engine.Post(ctx, draft)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnbalancedEntry))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(100), appErr.Details["difference"])

	// A rejected post consumes no folio.
	entry, err := b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.NoError(t, err)
	assert.Equal(t, "POL-202605-0001", entry.Folio)
}

func TestRejectedPostLeavesBalancesUntouched(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	draft := b.salesDraft(mayDate, 8500, 18500)
	draft.Movements[3].Amount = 999

	_, err := b.engine.Post(ctx, draft)
	require.Error(t, err)

	for _, a := range []*account.LedgerAccount{b.inventory, b.cogs, b.receivable, b.revenue} {
		balance, count := b.balance(t, a.ID)
		assert.True(t, balance.IsZero())
		assert.Equal(t, int64(0), count)
	}
}

func TestInactiveAccountRejected(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	b.revenue.Active = false
	require.NoError(t, b.accounts.Update(ctx, b.revenue))

	_, err := b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestClosedPeriodRejected(t *testing.T) {
	closedUntil := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	b := newBench(t, period.NewStrictPolicy(closedUntil))
	ctx := context.Background()

	_, err := b.engine.Post(ctx, b.salesDraft(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), 100, 200))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePeriodClosed))

	_, err = b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.NoError(t, err)
}

func TestEntryTypeClassification(t *testing.T) {
	assert.Equal(t, journal.TypeIngresos, journal.ClassifyEntryType("salesInvoice"))
	assert.Equal(t, journal.TypeIngresos, journal.ClassifyEntryType("posTicket"))
	assert.Equal(t, journal.TypeEgresos, journal.ClassifyEntryType("goodsReceipt"))
	assert.Equal(t, journal.TypeDiario, journal.ClassifyEntryType("manualAdjustment"))
	assert.Equal(t, journal.TypeDiario, journal.ClassifyEntryType(""))
}

func TestVoidPostsMirrorAndMarksOriginal(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	original, err := b.engine.Post(ctx, b.salesDraft(mayDate, 8500, 18500))
	require.NoError(t, err)

	reversal, err := b.engine.Void(ctx, original.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "POL-202605-0002", reversal.Folio)
	assert.Equal(t, original.Folio, reversal.SourceFolio)
	assert.Equal(t, account.SideCredit, reversal.Movements[0].Side)

	voided, err := b.entries.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusVoid, voided.Status)
	require.NotNil(t, voided.VoidedBy)
	assert.Equal(t, reversal.ID, *voided.VoidedBy)

	// Balance effect fully undone.
	for _, a := range []*account.LedgerAccount{b.inventory, b.cogs, b.receivable, b.revenue} {
		balance, count := b.balance(t, a.ID)
		assert.True(t, balance.IsZero(), a.Code)
		assert.Equal(t, int64(2), count, a.Code)
	}
}

func TestVoidTwiceRejected(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	original, err := b.engine.Post(ctx, b.salesDraft(mayDate, 100, 200))
	require.NoError(t, err)

	_, err = b.engine.Void(ctx, original.ID, "")
	require.NoError(t, err)

	_, err = b.engine.Void(ctx, original.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestReplayReproducesBalances(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	_, err := b.engine.Post(ctx, b.salesDraft(mayDate, 8500, 18500))
	require.NoError(t, err)
	second, err := b.engine.Post(ctx, b.salesDraft(mayDate, 3000, 4000))
	require.NoError(t, err)
	_, err = b.engine.Void(ctx, second.ID, "")
	require.NoError(t, err)

	type snapshot struct {
		balance types.MinorUnits
		count   int64
	}
	before := make(map[string]snapshot)
	for _, a := range []*account.LedgerAccount{b.inventory, b.cogs, b.receivable, b.revenue} {
		balance, count := b.balance(t, a.ID)
		before[a.Code] = snapshot{balance, count}
	}

	result, err := b.replayer.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.EntriesApplied)
	assert.Equal(t, 0, result.EntriesSkipped)

	for _, a := range []*account.LedgerAccount{b.inventory, b.cogs, b.receivable, b.revenue} {
		balance, count := b.balance(t, a.ID)
		assert.Equal(t, before[a.Code].balance, balance, a.Code)
		assert.Equal(t, before[a.Code].count, count, a.Code)
	}
}

func TestValidationRules(t *testing.T) {
	b := newBench(t, nil)
	ctx := context.Background()

	// Fewer than two movements.
	_, err := b.engine.Post(ctx, journal.Draft{
		Date:    mayDate,
		Concept: "incomplete",
		Movements: []journal.Movement{
			{AccountID: b.cogs.ID, Side: account.SideDebit, Amount: 100},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// Missing concept.
	draft := b.salesDraft(mayDate, 100, 200)
	draft.Concept = ""
	_, err = b.engine.Post(ctx, draft)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// Zero amount.
	draft = b.salesDraft(mayDate, 100, 200)
	draft.Movements[0].Amount = 0
	_, err = b.engine.Post(ctx, draft)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
