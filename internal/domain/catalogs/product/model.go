// Package product provides the product catalog consumed by the inventory
// ledger and the demand forecaster.
package product

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/types"
)

// TrackingType defines how stock of a product is identified.
type TrackingType string

const (
	TrackingNone   TrackingType = "none"
	TrackingLot    TrackingType = "lot"
	TrackingSerial TrackingType = "serial"
)

// Product is a catalog item. Identity (ID, SKU) is immutable; reorder
// parameters may change over the product's life.
type Product struct {
	entity.Catalog

	SKU      string `db:"sku" json:"sku"`
	BaseUnit string `db:"base_unit" json:"baseUnit"`

	TrackingType   TrackingType `db:"tracking_type" json:"trackingType"`
	RequiresExpiry bool         `db:"requires_expiry" json:"requiresExpiry"`

	// Replenishment parameters
	ReorderPoint types.Quantity `db:"reorder_point" json:"reorderPoint"`
	MinStock     types.Quantity `db:"min_stock" json:"minStock"`
	MaxStock     types.Quantity `db:"max_stock" json:"maxStock"`
	LeadTimeDays int            `db:"lead_time_days" json:"leadTimeDays"`
}

// New creates a product with required fields.
func New(code, name, sku, baseUnit string, tracking TrackingType) *Product {
	return &Product{
		Catalog:      entity.NewCatalog(code, name),
		SKU:          sku,
		BaseUnit:     baseUnit,
		TrackingType: tracking,
	}
}

// TracksLots reports whether movements of this product carry a lot code.
func (p *Product) TracksLots() bool {
	return p.TrackingType == TrackingLot || p.TrackingType == TrackingSerial
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}

	switch p.TrackingType {
	case TrackingNone, TrackingLot, TrackingSerial:
	default:
		return apperror.NewValidation("invalid tracking type").
			WithDetail("field", "trackingType").
			WithDetail("value", string(p.TrackingType))
	}

	if p.RequiresExpiry && p.TrackingType == TrackingNone {
		return apperror.NewValidation("expiry tracking requires lot or serial tracking").
			WithDetail("field", "requiresExpiry")
	}

	if p.MinStock.IsNegative() || p.MaxStock.IsNegative() || p.ReorderPoint.IsNegative() {
		return apperror.NewValidation("stock thresholds must not be negative")
	}

	if p.LeadTimeDays < 0 {
		return apperror.NewValidation("lead time must not be negative").
			WithDetail("field", "leadTimeDays")
	}

	return nil
}
