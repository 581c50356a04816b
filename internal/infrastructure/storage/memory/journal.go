package memory

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/accounting/journal"
)

// JournalRepo implements journal.Repository on the in-memory store.
type JournalRepo struct {
	store *Store
}

var _ journal.Repository = (*JournalRepo)(nil)

// NewJournalRepo creates a journal entry repository.
func NewJournalRepo(store *Store) *JournalRepo {
	return &JournalRepo{store: store}
}

func cloneEntry(e *journal.Entry) *journal.Entry {
	c := *e
	c.Movements = append([]journal.Movement(nil), e.Movements...)
	return &c
}

// Create appends the entry, rejecting duplicate folios.
func (r *JournalRepo) Create(ctx context.Context, e *journal.Entry) error {
	return r.store.write(ctx, func(st *state) error {
		for i := range st.entries {
			if st.entries[i].Folio == e.Folio {
				return apperror.NewDuplicate("journal entry", "folio", e.Folio)
			}
		}
		st.entries = append(st.entries, *cloneEntry(e))
		return nil
	})
}

func (r *JournalRepo) GetByID(ctx context.Context, entryID id.ID) (*journal.Entry, error) {
	var found *journal.Entry
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.entries {
			if st.entries[i].ID == entryID {
				found = cloneEntry(&st.entries[i])
				return nil
			}
		}
		return apperror.NewNotFound("journal entry", entryID.String())
	})
	return found, err
}

func (r *JournalRepo) GetByFolio(ctx context.Context, folio string) (*journal.Entry, error) {
	var found *journal.Entry
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.entries {
			if st.entries[i].Folio == folio {
				found = cloneEntry(&st.entries[i])
				return nil
			}
		}
		return apperror.NewNotFound("journal entry", folio)
	})
	return found, err
}

func (r *JournalRepo) GetBySource(ctx context.Context, sourceID id.ID) ([]*journal.Entry, error) {
	var out []*journal.Entry
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.entries {
			if st.entries[i].SourceID == sourceID {
				out = append(out, cloneEntry(&st.entries[i]))
			}
		}
		return nil
	})
	return out, err
}

func (r *JournalRepo) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, error) {
	var out []*journal.Entry
	err := r.store.read(ctx, func(st *state) error {
		// Log order is oldest-first; list newest-first.
		for i := len(st.entries) - 1; i >= 0; i-- {
			e := &st.entries[i]
			if filter.Type != nil && e.Type != *filter.Type {
				continue
			}
			if filter.Status != nil && e.Status != *filter.Status {
				continue
			}
			if filter.FromDate != nil && e.Date.Before(*filter.FromDate) {
				continue
			}
			if filter.ToDate != nil && !e.Date.Before(*filter.ToDate) {
				continue
			}
			out = append(out, cloneEntry(e))
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

// MarkVoid flips the entry status to void and records the reversing entry.
func (r *JournalRepo) MarkVoid(ctx context.Context, entryID, reversedBy id.ID) error {
	return r.store.write(ctx, func(st *state) error {
		for i := range st.entries {
			if st.entries[i].ID != entryID {
				continue
			}
			if st.entries[i].Status != journal.StatusPosted {
				return apperror.NewConcurrentModification("journal entry", entryID.String())
			}
			st.entries[i].Status = journal.StatusVoid
			st.entries[i].VoidedBy = &reversedBy
			st.entries[i].Touch()
			return nil
		}
		return apperror.NewNotFound("journal entry", entryID.String())
	})
}

// ListChronological returns every entry in creation order.
func (r *JournalRepo) ListChronological(ctx context.Context) ([]*journal.Entry, error) {
	var out []*journal.Entry
	err := r.store.read(ctx, func(st *state) error {
		for i := range st.entries {
			out = append(out, cloneEntry(&st.entries[i]))
		}
		return nil
	})
	return out, err
}
