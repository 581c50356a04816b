// Package memory provides an in-memory storage engine with the same
// repository surface as the postgres engine. A single mutex serializes
// writers; transactions run against a deep copy of the state that is swapped
// in atomically on commit, so a failed transaction leaves no trace.
//
// Used by tests and as the reference implementation of the storage contract.
package memory

import (
	"context"

	"sync"

	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
	"kardex/internal/domain/inventory/ledger"
)

// state is the complete engine state. Movements and entries are append-only
// logs; catalogs are keyed by id.
type state struct {
	movements []ledger.Movement
	entries   []journal.Entry

	products   map[id.ID]product.Product
	warehouses map[id.ID]warehouse.Warehouse
	accounts   map[id.ID]account.LedgerAccount

	sequences map[string]int64
}

func newState() *state {
	return &state{
		products:   make(map[id.ID]product.Product),
		warehouses: make(map[id.ID]warehouse.Warehouse),
		accounts:   make(map[id.ID]account.LedgerAccount),
		sequences:  make(map[string]int64),
	}
}

// clone deep-copies the state. Movement and Entry values contain pointers
// (lot codes, expiries) that are never mutated after append, so copying the
// containers is enough.
func (s *state) clone() *state {
	c := &state{
		movements:  make([]ledger.Movement, len(s.movements)),
		entries:    make([]journal.Entry, len(s.entries)),
		products:   make(map[id.ID]product.Product, len(s.products)),
		warehouses: make(map[id.ID]warehouse.Warehouse, len(s.warehouses)),
		accounts:   make(map[id.ID]account.LedgerAccount, len(s.accounts)),
		sequences:  make(map[string]int64, len(s.sequences)),
	}
	copy(c.movements, s.movements)
	for i := range s.entries {
		c.entries[i] = s.entries[i]
		c.entries[i].Movements = append([]journal.Movement(nil), s.entries[i].Movements...)
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store owns the engine state.
type Store struct {
	mu   sync.Mutex
	live *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{live: newState()}
}

type txKey struct{}

// TxManager implements tx.Manager by serializing all writers on the store
// mutex and running fn against a clone. The global mutex is the single-writer
// discipline: there is never more than one open write transaction.
type TxManager struct {
	store *Store
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// NewTxManager creates a transaction manager for the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn against a copy of the state, committing by
// swapping the copy in. Nested calls reuse the transaction from context.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txState(ctx) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	working := m.store.live.clone()
	if err := fn(context.WithValue(ctx, txKey{}, working)); err != nil {
		return err
	}

	m.store.live = working
	return nil
}

// ReadOnly executes fn against a snapshot; changes are discarded.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	snapshot := m.store.live.clone()
	m.store.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, snapshot))
}

// txState returns the transaction's working state, or nil.
func txState(ctx context.Context) *state {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return st
	}
	return nil
}

// read hands a consistent state to fn: the transaction's working copy when
// inside one, otherwise the live state under the mutex.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if st := txState(ctx); st != nil {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.live)
}

// write is like read; out-of-transaction writes mutate the live state
// directly, which is safe for single-statement operations.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.read(ctx, fn)
}
