package memory

import (
	"context"

	"kardex/internal/core/id"
	"kardex/internal/domain/inventory/ledger"
)

// LedgerRepo implements ledger.Repository on the in-memory store.
type LedgerRepo struct {
	store *Store
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// NewLedgerRepo creates a stock ledger repository.
func NewLedgerRepo(store *Store) *LedgerRepo {
	return &LedgerRepo{store: store}
}

// Append adds movements to the log.
func (r *LedgerRepo) Append(ctx context.Context, movements []ledger.Movement) error {
	return r.store.write(ctx, func(st *state) error {
		st.movements = append(st.movements, movements...)
		return nil
	})
}

// LockKey is a no-op: the store mutex already serializes all writers, which
// subsumes per-key locking.
func (r *LedgerRepo) LockKey(ctx context.Context, productID, warehouseID id.ID) error {
	return nil
}

// MovementsForKey returns all movements for a key in insertion order.
func (r *LedgerRepo) MovementsForKey(ctx context.Context, productID, warehouseID id.ID) ([]ledger.Movement, error) {
	var out []ledger.Movement
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.movements {
			m := &st.movements[i]
			if m.ProductID == productID && m.WarehouseID == warehouseID {
				out = append(out, *m)
			}
		}
		return nil
	})
	return out, err
}

// MovementsForProduct returns filtered movement history for a product.
func (r *LedgerRepo) MovementsForProduct(ctx context.Context, productID id.ID, filter ledger.HistoryFilter) ([]ledger.Movement, error) {
	var out []ledger.Movement
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.movements {
			m := &st.movements[i]
			if m.ProductID != productID {
				continue
			}
			if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
				continue
			}
			if filter.Kind != nil && m.Kind != *filter.Kind {
				continue
			}
			if filter.FromDate != nil && m.Period.Before(*filter.FromDate) {
				continue
			}
			if filter.ToDate != nil && !m.Period.Before(*filter.ToDate) {
				continue
			}
			out = append(out, *m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// MovementsBySource returns the movements recorded for a business event.
func (r *LedgerRepo) MovementsBySource(ctx context.Context, sourceID id.ID) ([]ledger.Movement, error) {
	var out []ledger.Movement
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.movements {
			if st.movements[i].Source.ID == sourceID {
				out = append(out, st.movements[i])
			}
		}
		return nil
	})
	return out, err
}

// ListAll returns the entire log in insertion order.
func (r *LedgerRepo) ListAll(ctx context.Context) ([]ledger.Movement, error) {
	var out []ledger.Movement
	err := r.store.read(ctx, func(st *state) error {
		out = append(out, st.movements...)
		return nil
	})
	return out, err
}
