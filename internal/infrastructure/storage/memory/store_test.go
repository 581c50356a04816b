package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/domain/catalogs/product"
)

func newProduct(code string) *product.Product {
	return product.New(code, "Producto "+code, "SKU-"+code, "pcs", product.TrackingNone)
}

func TestCommitSwapsState(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	manager := NewTxManager(store)
	ctx := context.Background()

	p := newProduct("PRD-001")
	err := manager.RunInTransaction(ctx, func(ctx context.Context) error {
		return products.Create(ctx, p)
	})
	require.NoError(t, err)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PRD-001", got.Code)
}

func TestRollbackLeavesLiveUntouched(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	manager := NewTxManager(store)
	ctx := context.Background()

	p := newProduct("PRD-001")
	boom := errors.New("boom")
	err := manager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := products.Create(ctx, p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = products.GetByID(ctx, p.ID)
	require.Error(t, err)
}

func TestNestedTransactionReusesWorkingState(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	manager := NewTxManager(store)
	ctx := context.Background()

	outer := newProduct("PRD-001")
	inner := newProduct("PRD-002")
	boom := errors.New("boom")

	err := manager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := products.Create(ctx, outer); err != nil {
			return err
		}
		return manager.RunInTransaction(ctx, func(ctx context.Context) error {
			// The nested call sees the outer write.
			if _, err := products.GetByID(ctx, outer.ID); err != nil {
				return err
			}
			if err := products.Create(ctx, inner); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	// One failure rolls back the whole chain.
	_, err = products.GetByID(ctx, outer.ID)
	require.Error(t, err)
	_, err = products.GetByID(ctx, inner.ID)
	require.Error(t, err)
}

func TestReadOnlyDiscardsWrites(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	manager := NewTxManager(store)
	ctx := context.Background()

	p := newProduct("PRD-001")
	err := manager.ReadOnly(ctx, func(ctx context.Context) error {
		return products.Create(ctx, p)
	})
	require.NoError(t, err)

	_, err = products.GetByID(ctx, p.ID)
	require.Error(t, err)
}

func TestSequenceRolledBackWithTransaction(t *testing.T) {
	store := NewStore()
	sequences := NewSequenceStore(store)
	manager := NewTxManager(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := manager.RunInTransaction(ctx, func(ctx context.Context) error {
		value, err := sequences.Increment(ctx, "POL_2026_05", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The drawn number was released with the rollback.
	value, err := sequences.Increment(ctx, "POL_2026_05", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
}

func TestRepositoriesReturnCopies(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	ctx := context.Background()

	p := newProduct("PRD-001")
	require.NoError(t, products.Create(ctx, p))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Name)
}
