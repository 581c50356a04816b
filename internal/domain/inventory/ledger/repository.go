package ledger

import (
	"context"
	"time"

	"kardex/internal/core/id"
)

// HistoryFilter narrows movement history queries.
type HistoryFilter struct {
	WarehouseID *id.ID
	Kind        *MovementKind
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// Repository defines persistence for the stock movement log.
//
// Append and LockKey must be called inside a transaction; LockKey serializes
// writers on a (product, warehouse) key so that negative-stock checks always
// run against the latest committed state.
type Repository interface {
	// Append batch inserts movements.
	Append(ctx context.Context, movements []Movement) error

	// LockKey acquires the per-key write lock for the transaction's duration.
	LockKey(ctx context.Context, productID, warehouseID id.ID) error

	// MovementsForKey returns all movements for a (product, warehouse) key
	// in insertion order (LineID ascending).
	MovementsForKey(ctx context.Context, productID, warehouseID id.ID) ([]Movement, error)

	// MovementsForProduct returns movement history for a product across
	// warehouses, filtered, in insertion order.
	MovementsForProduct(ctx context.Context, productID id.ID, filter HistoryFilter) ([]Movement, error)

	// MovementsBySource returns the movements recorded for a business event.
	MovementsBySource(ctx context.Context, sourceID id.ID) ([]Movement, error)

	// ListAll streams the entire log in insertion order (replay recovery).
	ListAll(ctx context.Context) ([]Movement, error)
}
