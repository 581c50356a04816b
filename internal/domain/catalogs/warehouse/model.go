// Package warehouse provides the warehouse catalog. Warehouses are leaf
// entities referenced by stock movements.
package warehouse

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
)

// Type defines the warehouse category.
type Type string

const (
	TypeMain         Type = "main"
	TypeDistribution Type = "distribution"
	TypeRetail       Type = "retail"
	TypeTransit      Type = "transit"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	Type Type `db:"type" json:"type"`

	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault marks the warehouse preselected for POS sales
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// New creates a warehouse with required fields.
func New(code, name string, whType Type) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(code, name),
		Type:    whType,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch w.Type {
	case TypeMain, TypeDistribution, TypeRetail, TypeTransit:
	default:
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}

	return nil
}
