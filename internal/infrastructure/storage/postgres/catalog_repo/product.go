package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"kardex/internal/core/id"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

var productColumns = []string{
	"id", "version", "created_at", "updated_at",
	"code", "name", "active",
	"sku", "base_unit", "tracking_type", "requires_expiry",
	"reorder_point", "min_stock", "max_stock", "lead_time_days",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	baseRepo[product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a product catalog repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{baseRepo: newBaseRepo[product.Product](txManager, productsTable, productColumns)}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder().Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Version, p.CreatedAt, p.UpdatedAt,
			p.Code, p.Name, p.Active,
			p.SKU, p.BaseUnit, p.TrackingType, p.RequiresExpiry,
			p.ReorderPoint, p.MinStock, p.MaxStock, p.LeadTimeDays,
		)
	return r.exec(ctx, q, "sku", p.SKU)
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder().Update(productsTable).
		Set("name", p.Name).
		Set("active", p.Active).
		Set("base_unit", p.BaseUnit).
		Set("requires_expiry", p.RequiresExpiry).
		Set("reorder_point", p.ReorderPoint).
		Set("min_stock", p.MinStock).
		Set("max_stock", p.MaxStock).
		Set("lead_time_days", p.LeadTimeDays).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID, "version": p.Version})
	return r.execVersioned(ctx, q, p.ID)
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getByID(ctx, productID)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"sku": sku}).Limit(1), sku)
}

func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	return r.list(ctx, activeOnly)
}
