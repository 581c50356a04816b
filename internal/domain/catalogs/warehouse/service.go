package warehouse

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Service provides business operations for the warehouse catalog.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a warehouse service.
func NewService(repo Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: num, txManager: txManager}
}

// Create validates and stores a new warehouse.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if w.Code == "" {
		code, err := s.numerator.Next(ctx, numerator.DefaultConfig("WH"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		w.Code = code
	}

	if err := w.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if w.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "code", w.Code)
	return nil
}

// GetByID fetches a warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// List returns catalog entries.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Warehouse, error) {
	return s.repo.List(ctx, activeOnly)
}

// SetDefault marks one warehouse as the default, clearing the flag elsewhere.
func (s *Service) SetDefault(ctx context.Context, warehouseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}

		if err := s.repo.ClearDefault(ctx); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}

		w.IsDefault = true
		w.Touch()
		return s.repo.Update(ctx, w)
	})
}
