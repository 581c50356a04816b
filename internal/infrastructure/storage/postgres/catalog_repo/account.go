package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/infrastructure/storage/postgres"
)

const accountsTable = "cat_accounts"

var accountColumns = []string{
	"id", "version", "created_at", "updated_at",
	"code", "name", "active",
	"type", "nature", "balance", "movement_count",
}

// AccountRepo implements account.Repository.
type AccountRepo struct {
	baseRepo[account.LedgerAccount]
}

var _ account.Repository = (*AccountRepo)(nil)

// NewAccountRepo creates a chart-of-accounts repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{baseRepo: newBaseRepo[account.LedgerAccount](txManager, accountsTable, accountColumns)}
}

func (r *AccountRepo) Create(ctx context.Context, a *account.LedgerAccount) error {
	q := r.builder().Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			a.ID, a.Version, a.CreatedAt, a.UpdatedAt,
			a.Code, a.Name, a.Active,
			a.Type, a.Nature, a.Balance, a.MovementCount,
		)
	return r.exec(ctx, q, "code", a.Code)
}

// Update modifies identity fields only. Balance and movement count are never
// set here; they change exclusively through ApplyBalanceChange.
func (r *AccountRepo) Update(ctx context.Context, a *account.LedgerAccount) error {
	q := r.builder().Update(accountsTable).
		Set("name", a.Name).
		Set("active", a.Active).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": a.ID, "version": a.Version})
	return r.execVersioned(ctx, q, a.ID)
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*account.LedgerAccount, error) {
	return r.getByID(ctx, accountID)
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*account.LedgerAccount, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"code": code}).Limit(1), code)
}

func (r *AccountRepo) List(ctx context.Context, activeOnly bool) ([]*account.LedgerAccount, error) {
	return r.list(ctx, activeOnly)
}

// GetForUpdate retrieves the account with a row lock so balance updates are
// serialized per account.
func (r *AccountRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*account.LedgerAccount, error) {
	return r.getForUpdate(ctx, accountID)
}

// ApplyBalanceChange adds delta to the account balance and increments its
// movement count.
func (r *AccountRepo) ApplyBalanceChange(ctx context.Context, accountID id.ID, delta types.MinorUnits) error {
	q := r.builder().Update(accountsTable).
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Set("movement_count", squirrel.Expr("movement_count + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": accountID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply balance change: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found for balance change", accountID)
	}
	return nil
}

// ResetBalances zeroes every balance and movement count before replay.
func (r *AccountRepo) ResetBalances(ctx context.Context) error {
	q := r.builder().Update(accountsTable).
		Set("balance", int64(0)).
		Set("movement_count", int64(0)).
		Set("updated_at", squirrel.Expr("now()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reset balances: %w", err)
	}
	return nil
}
