package product

import (
	"context"

	"kardex/internal/core/id"
)

// Repository defines persistence for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]*Product, error)
}
