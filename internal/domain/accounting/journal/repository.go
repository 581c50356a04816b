package journal

import (
	"context"
	"time"

	"kardex/internal/core/id"
)

// ListFilter narrows journal entry listings.
type ListFilter struct {
	Type     *EntryType
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence for journal entries. Entries and their
// movements are written together; posted entries are never updated except to
// flip status to void.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	GetByFolio(ctx context.Context, folio string) (*Entry, error)
	GetBySource(ctx context.Context, sourceID id.ID) ([]*Entry, error)
	List(ctx context.Context, filter ListFilter) ([]*Entry, error)

	// MarkVoid sets the entry status to void and records the reversing entry.
	MarkVoid(ctx context.Context, entryID, reversedBy id.ID) error

	// ListChronological returns every entry ordered by creation for replay.
	ListChronological(ctx context.Context) ([]*Entry, error)
}
