package memory

import (
	"context"

	"kardex/pkg/numerator"
)

// SequenceStore implements numerator.Store on the in-memory state. Sequences
// live inside the transactional state, so a folio drawn in a rolled-back
// transaction is released with it.
type SequenceStore struct {
	store *Store
}

var _ numerator.Store = (*SequenceStore)(nil)

// NewSequenceStore creates a sequence store.
func NewSequenceStore(store *Store) *SequenceStore {
	return &SequenceStore{store: store}
}

// Increment advances the named sequence by delta and returns the new value.
func (s *SequenceStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	var value int64
	err := s.store.write(ctx, func(st *state) error {
		st.sequences[key] += delta
		value = st.sequences[key]
		return nil
	})
	return value, err
}
