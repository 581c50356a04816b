package dto

import (
	"time"

	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
)

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Code     string `json:"code,omitempty"`
	Name     string `json:"name" binding:"required"`
	SKU      string `json:"sku" binding:"required"`
	BaseUnit string `json:"baseUnit" binding:"required"`

	TrackingType   string `json:"trackingType,omitempty"`
	RequiresExpiry bool   `json:"requiresExpiry,omitempty"`

	ReorderPoint types.Quantity `json:"reorderPoint,omitempty"`
	MinStock     types.Quantity `json:"minStock,omitempty"`
	MaxStock     types.Quantity `json:"maxStock,omitempty"`
	LeadTimeDays int            `json:"leadTimeDays,omitempty"`
}

// ToProduct converts the request to a catalog entity.
func (r *CreateProductRequest) ToProduct() *product.Product {
	tracking := product.TrackingType(r.TrackingType)
	if tracking == "" {
		tracking = product.TrackingNone
	}

	p := product.New(r.Code, r.Name, r.SKU, r.BaseUnit, tracking)
	p.RequiresExpiry = r.RequiresExpiry
	p.ReorderPoint = r.ReorderPoint
	p.MinStock = r.MinStock
	p.MaxStock = r.MaxStock
	p.LeadTimeDays = r.LeadTimeDays
	return p
}

// UpdateReorderRequest changes a product's replenishment parameters.
type UpdateReorderRequest struct {
	ReorderPoint types.Quantity `json:"reorderPoint"`
	MinStock     types.Quantity `json:"minStock"`
	MaxStock     types.Quantity `json:"maxStock"`
	LeadTimeDays int            `json:"leadTimeDays"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	BaseUnit string `json:"baseUnit"`
	Active   bool   `json:"active"`

	TrackingType   string `json:"trackingType"`
	RequiresExpiry bool   `json:"requiresExpiry"`

	ReorderPoint types.Quantity `json:"reorderPoint"`
	MinStock     types.Quantity `json:"minStock"`
	MaxStock     types.Quantity `json:"maxStock"`
	LeadTimeDays int            `json:"leadTimeDays"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromProduct maps a product to the wire shape.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID.String(),
		Code:           p.Code,
		Name:           p.Name,
		SKU:            p.SKU,
		BaseUnit:       p.BaseUnit,
		Active:         p.Active,
		TrackingType:   string(p.TrackingType),
		RequiresExpiry: p.RequiresExpiry,
		ReorderPoint:   p.ReorderPoint,
		MinStock:       p.MinStock,
		MaxStock:       p.MaxStock,
		LeadTimeDays:   p.LeadTimeDays,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// CreateWarehouseRequest is the payload for creating a warehouse.
type CreateWarehouseRequest struct {
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Address   *string `json:"address,omitempty"`
	IsDefault bool    `json:"isDefault,omitempty"`
}

// ToWarehouse converts the request to a catalog entity.
func (r *CreateWarehouseRequest) ToWarehouse() *warehouse.Warehouse {
	w := warehouse.New(r.Code, r.Name, warehouse.Type(r.Type))
	w.Address = r.Address
	w.IsDefault = r.IsDefault
	return w
}

// WarehouseResponse is the wire shape of a warehouse.
type WarehouseResponse struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Address   *string `json:"address,omitempty"`
	IsDefault bool    `json:"isDefault"`
	Active    bool    `json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromWarehouse maps a warehouse to the wire shape.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID.String(),
		Code:      w.Code,
		Name:      w.Name,
		Type:      string(w.Type),
		Address:   w.Address,
		IsDefault: w.IsDefault,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// CreateAccountRequest is the payload for creating a ledger account.
type CreateAccountRequest struct {
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Type   string `json:"type" binding:"required"`
	Nature string `json:"nature" binding:"required"`
}

// ToAccount converts the request to a catalog entity.
func (r *CreateAccountRequest) ToAccount() *account.LedgerAccount {
	return account.New(r.Code, r.Name, account.AccountType(r.Type), account.Nature(r.Nature))
}

// AccountResponse is the wire shape of a ledger account.
type AccountResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Nature string `json:"nature"`
	Active bool   `json:"active"`

	Balance       int64 `json:"balance"`
	MovementCount int64 `json:"movementCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromAccount maps an account to the wire shape.
func FromAccount(a *account.LedgerAccount) AccountResponse {
	return AccountResponse{
		ID:            a.ID.String(),
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		Nature:        string(a.Nature),
		Active:        a.Active,
		Balance:       int64(a.Balance),
		MovementCount: a.MovementCount,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
