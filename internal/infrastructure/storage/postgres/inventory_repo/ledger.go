// Package inventory_repo provides PostgreSQL persistence for the stock
// movement ledger.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/id"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/storage/postgres"
)

const movementsTable = "inv_movements"

var movementColumns = []string{
	"line_id", "product_id", "warehouse_id", "lot_code",
	"kind", "quantity", "unit_cost", "expiry", "period",
	"source_type", "source_id", "source_folio", "created_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// NewLedgerRepo creates a stock ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// movementRow is the flat scan target; SourceRef is embedded columns.
type movementRow struct {
	ledger.Movement
	SourceType  string `db:"source_type"`
	SourceID    id.ID  `db:"source_id"`
	SourceFolio string `db:"source_folio"`
}

func (r *movementRow) toMovement() ledger.Movement {
	m := r.Movement
	m.Source = ledger.SourceRef{Type: r.SourceType, ID: r.SourceID, Folio: r.SourceFolio}
	return m
}

func rowsToMovements(rows []movementRow) []ledger.Movement {
	movements := make([]ledger.Movement, len(rows))
	for i := range rows {
		movements[i] = rows[i].toMovement()
	}
	return movements
}

// Append batch inserts movements. Multi-line batches inside a transaction go
// through COPY; single movements use a plain INSERT.
func (r *LedgerRepo) Append(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil && len(movements) > 1 {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for i := range movements {
			m := &movements[i]
			rows = append(rows, []any{
				m.LineID, m.ProductID, m.WarehouseID, m.LotCode,
				m.Kind, m.Quantity, m.UnitCost, m.Expiry, m.Period,
				m.Source.Type, m.Source.ID, m.Source.Folio, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for i := range movements {
		m := &movements[i]
		q = q.Values(
			m.LineID, m.ProductID, m.WarehouseID, m.LotCode,
			m.Kind, m.Quantity, m.UnitCost, m.Expiry, m.Period,
			m.Source.Type, m.Source.ID, m.Source.Folio, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// LockKey serializes writers on a (product, warehouse) key with a
// transaction-scoped advisory lock. Released automatically at commit or
// rollback.
func (r *LedgerRepo) LockKey(ctx context.Context, productID, warehouseID id.ID) error {
	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("LockKey requires transaction context")
	}

	sql := `SELECT pg_advisory_xact_lock(hashtextextended($1::text || $2::text, 0))`
	if _, err := tx.Exec(ctx, sql, productID, warehouseID); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

// MovementsForKey returns all movements for a key in insertion order.
// UUIDv7 line ids are time-ordered, so LineID ascending is insertion order.
func (r *LedgerRepo) MovementsForKey(ctx context.Context, productID, warehouseID id.ID) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID, "warehouse_id": warehouseID}).
		OrderBy("line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return rowsToMovements(rows), nil
}

// MovementsForProduct returns filtered movement history for a product.
func (r *LedgerRepo) MovementsForProduct(ctx context.Context, productID id.ID, filter ledger.HistoryFilter) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"period": *filter.ToDate})
	}

	q = q.OrderBy("line_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	return rowsToMovements(rows), nil
}

// MovementsBySource returns the movements recorded for a business event.
func (r *LedgerRepo) MovementsBySource(ctx context.Context, sourceID id.ID) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select by source: %w", err)
	}
	return rowsToMovements(rows), nil
}

// ListAll streams the entire log in insertion order.
func (r *LedgerRepo) ListAll(ctx context.Context) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		OrderBy("line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select all movements: %w", err)
	}
	return rowsToMovements(rows), nil
}
