package warehouse

import (
	"context"

	"kardex/internal/core/id"
)

// Repository defines persistence for the warehouse catalog.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	Update(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	List(ctx context.Context, activeOnly bool) ([]*Warehouse, error)

	// ClearDefault clears the default flag on all warehouses.
	ClearDefault(ctx context.Context) error
}
