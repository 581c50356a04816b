// Package journal_repo provides PostgreSQL persistence for journal entries.
package journal_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	entriesTable   = "acc_entries"
	movementsTable = "acc_entry_movements"
)

var entryColumns = []string{
	"id", "version", "created_at", "updated_at",
	"folio", "type", "date", "concept",
	"total_debit", "total_credit", "status",
	"source_type", "source_id", "source_folio", "auto_posted", "voided_by",
}

// JournalRepo implements journal.Repository.
type JournalRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ journal.Repository = (*JournalRepo)(nil)

// NewJournalRepo creates a journal entry repository.
func NewJournalRepo(txManager *postgres.TxManager) *JournalRepo {
	return &JournalRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the entry and its movements. Must run inside the posting
// transaction so the entry and account balance changes commit together.
func (r *JournalRepo) Create(ctx context.Context, e *journal.Entry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.Version, e.CreatedAt, e.UpdatedAt,
			e.Folio, e.Type, e.Date, e.Concept,
			e.TotalDebit, e.TotalCredit, e.Status,
			e.SourceType, e.SourceID, e.SourceFolio, e.AutoPosted, e.VoidedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build entry insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("journal entry", "folio", e.Folio).WithCause(err)
		}
		return fmt.Errorf("insert entry: %w", err)
	}

	mq := r.builder.Insert(movementsTable).
		Columns("entry_id", "position", "account_id", "account_code", "side", "amount")
	for i := range e.Movements {
		m := &e.Movements[i]
		mq = mq.Values(e.ID, i, m.AccountID, m.AccountCode, m.Side, m.Amount)
	}

	sql, args, err = mq.ToSql()
	if err != nil {
		return fmt.Errorf("build movements insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry movements: %w", err)
	}

	return nil
}

// GetByID retrieves an entry with its movements.
func (r *JournalRepo) GetByID(ctx context.Context, entryID id.ID) (*journal.Entry, error) {
	return r.getOne(ctx, squirrel.Eq{"id": entryID}, entryID)
}

// GetByFolio retrieves an entry by folio.
func (r *JournalRepo) GetByFolio(ctx context.Context, folio string) (*journal.Entry, error) {
	return r.getOne(ctx, squirrel.Eq{"folio": folio}, folio)
}

func (r *JournalRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*journal.Entry, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry journal.Entry
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("journal entry", key)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if err := r.loadMovements(ctx, []*journal.Entry{&entry}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetBySource returns entries posted for a business document.
func (r *JournalRepo) GetBySource(ctx context.Context, sourceID id.ID) ([]*journal.Entry, error) {
	return r.selectEntries(ctx, r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("created_at"))
}

// List returns entries matching the filter, newest first.
func (r *JournalRepo) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable)

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"date": *filter.ToDate})
	}

	q = q.OrderBy("date DESC", "folio DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectEntries(ctx, q)
}

// ListChronological returns every entry in creation order for replay.
func (r *JournalRepo) ListChronological(ctx context.Context) ([]*journal.Entry, error) {
	return r.selectEntries(ctx, r.builder.Select(entryColumns...).
		From(entriesTable).
		OrderBy("id"))
}

// MarkVoid flips the entry status to void and records the reversing entry.
func (r *JournalRepo) MarkVoid(ctx context.Context, entryID, reversedBy id.ID) error {
	q := r.builder.Update(entriesTable).
		Set("status", journal.StatusVoid).
		Set("voided_by", reversedBy).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": entryID, "status": journal.StatusPosted})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark void: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("journal entry", entryID)
	}
	return nil
}

func (r *JournalRepo) selectEntries(ctx context.Context, q squirrel.SelectBuilder) ([]*journal.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*journal.Entry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	if err := r.loadMovements(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// loadMovements fetches movements for a batch of entries in one query.
func (r *JournalRepo) loadMovements(ctx context.Context, entries []*journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]id.ID, len(entries))
	index := make(map[id.ID]*journal.Entry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = e
	}

	q := r.builder.Select("entry_id", "account_id", "account_code", "side", "amount").
		From(movementsTable).
		Where(squirrel.Eq{"entry_id": ids}).
		OrderBy("entry_id", "position")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build movements query: %w", err)
	}

	type movementRow struct {
		EntryID id.ID `db:"entry_id"`
		journal.Movement
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("select entry movements: %w", err)
	}

	for i := range rows {
		if e, ok := index[rows[i].EntryID]; ok {
			e.Movements = append(e.Movements, rows[i].Movement)
		}
	}
	return nil
}
