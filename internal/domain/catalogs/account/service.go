package account

import (
	"context"
	"fmt"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/pkg/logger"
)

// Service provides catalog operations for the chart of accounts.
// Balance changes are not exposed here; they belong to the journal engine.
type Service struct {
	repo Repository
}

// NewService creates an account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new account.
func (s *Service) Create(ctx context.Context, a *LedgerAccount) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, a.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("account", "code", a.Code)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	logger.Info(ctx, "ledger account created", "id", a.ID, "code", a.Code)
	return nil
}

// GetByID fetches an account.
func (s *Service) GetByID(ctx context.Context, accountID id.ID) (*LedgerAccount, error) {
	return s.repo.GetByID(ctx, accountID)
}

// GetByCode fetches an account by its chart code.
func (s *Service) GetByCode(ctx context.Context, code string) (*LedgerAccount, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns chart entries.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*LedgerAccount, error) {
	return s.repo.List(ctx, activeOnly)
}

// Deactivate marks an account inactive; inactive accounts reject postings.
func (s *Service) Deactivate(ctx context.Context, accountID id.ID) error {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	a.Active = false
	a.Touch()
	return s.repo.Update(ctx, a)
}
