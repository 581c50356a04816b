package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"kardex/internal/core/id"
	"kardex/internal/domain/catalogs/warehouse"
	"kardex/internal/infrastructure/storage/postgres"
)

const warehousesTable = "cat_warehouses"

var warehouseColumns = []string{
	"id", "version", "created_at", "updated_at",
	"code", "name", "active",
	"type", "address", "is_default",
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	baseRepo[warehouse.Warehouse]
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a warehouse catalog repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{baseRepo: newBaseRepo[warehouse.Warehouse](txManager, warehousesTable, warehouseColumns)}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder().Insert(warehousesTable).
		Columns(warehouseColumns...).
		Values(
			w.ID, w.Version, w.CreatedAt, w.UpdatedAt,
			w.Code, w.Name, w.Active,
			w.Type, w.Address, w.IsDefault,
		)
	return r.exec(ctx, q, "code", w.Code)
}

func (r *WarehouseRepo) Update(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder().Update(warehousesTable).
		Set("name", w.Name).
		Set("active", w.Active).
		Set("type", w.Type).
		Set("address", w.Address).
		Set("is_default", w.IsDefault).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": w.ID, "version": w.Version})
	return r.execVersioned(ctx, q, w.ID)
}

func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	return r.getByID(ctx, warehouseID)
}

func (r *WarehouseRepo) List(ctx context.Context, activeOnly bool) ([]*warehouse.Warehouse, error) {
	return r.list(ctx, activeOnly)
}

// ClearDefault clears the default flag on all warehouses.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	q := r.builder().Update(warehousesTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default warehouse: %w", err)
	}
	return nil
}
