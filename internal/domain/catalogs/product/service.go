package product

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a product service.
func NewService(repo Repository, num *numerator.Service) *Service {
	return &Service{repo: repo, numerator: num}
}

// Create validates and stores a new product, generating a code if absent.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.Next(ctx, numerator.DefaultConfig("PRD"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "sku", p.SKU)
	return nil
}

// GetByID fetches a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List returns catalog entries.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Product, error) {
	return s.repo.List(ctx, activeOnly)
}

// UpdateReorderParameters changes the mutable replenishment settings.
// Identity fields (SKU, tracking) are immutable once the product exists.
func (s *Service) UpdateReorderParameters(ctx context.Context, productID id.ID, reorderPoint, minStock, maxStock types.Quantity, leadTimeDays int) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	p.ReorderPoint = reorderPoint
	p.MinStock = minStock
	p.MaxStock = maxStock
	p.LeadTimeDays = leadTimeDays

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	p.Touch()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return p, nil
}
