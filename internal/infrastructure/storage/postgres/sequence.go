package postgres

import (
	"context"
	"fmt"

	"kardex/pkg/numerator"
)

// SequenceStore implements numerator.Store on a plain table. The upsert
// takes a row lock on the sequence key, so a folio drawn inside a rolled-back
// posting transaction is released, not burned: gap-free strict numbering.
type SequenceStore struct {
	txManager *TxManager
}

var _ numerator.Store = (*SequenceStore)(nil)

// NewSequenceStore creates a sequence store.
func NewSequenceStore(txManager *TxManager) *SequenceStore {
	return &SequenceStore{txManager: txManager}
}

// Increment advances the named sequence by delta and returns the new value.
func (s *SequenceStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	sql := `
		INSERT INTO sys_sequences (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = sys_sequences.value + $2
		RETURNING value
	`

	var value int64
	querier := s.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, key, delta).Scan(&value); err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return value, nil
}
