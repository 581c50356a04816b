package account

import (
	"context"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Repository defines persistence for the chart of accounts.
//
// Balance mutation methods must be called inside a transaction; the journal
// engine is the only writer.
type Repository interface {
	Create(ctx context.Context, a *LedgerAccount) error
	Update(ctx context.Context, a *LedgerAccount) error
	GetByID(ctx context.Context, accountID id.ID) (*LedgerAccount, error)
	GetByCode(ctx context.Context, code string) (*LedgerAccount, error)
	List(ctx context.Context, activeOnly bool) ([]*LedgerAccount, error)

	// GetForUpdate retrieves the account with a row lock so balance updates
	// are serialized per account.
	GetForUpdate(ctx context.Context, accountID id.ID) (*LedgerAccount, error)

	// ApplyBalanceChange adds delta to the account balance and increments
	// its movement count.
	ApplyBalanceChange(ctx context.Context, accountID id.ID, delta types.MinorUnits) error

	// ResetBalances zeroes every balance and movement count.
	// Used by replay recovery before re-deriving balances from the journal.
	ResetBalances(ctx context.Context) error
}
