// Package account provides the chart of accounts (LedgerAccount store).
// Balances are derived running totals: only the journal engine mutates them,
// and they must always be reproducible by replaying journal history.
package account

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/types"
)

// AccountType classifies an account in the chart.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
	TypeCost      AccountType = "cost"
)

// Nature is the normal balance side of an account.
type Nature string

const (
	// NatureDebit: debits increase the balance (assets, expenses, costs).
	NatureDebit Nature = "debit"
	// NatureCredit: credits increase the balance (liabilities, equity, income).
	NatureCredit Nature = "credit"
)

// Side of a journal movement.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// LedgerAccount is one account in the chart of accounts.
type LedgerAccount struct {
	entity.Catalog

	Type   AccountType `db:"type" json:"type"`
	Nature Nature      `db:"nature" json:"nature"`

	// Balance is a materialized running total in minor units
	Balance types.MinorUnits `db:"balance" json:"balance"`

	// MovementCount tracks how many journal movements touched the account
	MovementCount int64 `db:"movement_count" json:"movementCount"`
}

// New creates a ledger account.
func New(code, name string, accType AccountType, nature Nature) *LedgerAccount {
	return &LedgerAccount{
		Catalog: entity.NewCatalog(code, name),
		Type:    accType,
		Nature:  nature,
	}
}

// BalanceDelta returns the signed balance change this account experiences
// from a movement of the given side and amount. A debit increases
// debit-normal balances and decreases credit-normal ones; symmetric for
// credits.
func (a *LedgerAccount) BalanceDelta(side Side, amount types.MinorUnits) types.MinorUnits {
	increases := (side == SideDebit && a.Nature == NatureDebit) ||
		(side == SideCredit && a.Nature == NatureCredit)
	if increases {
		return amount
	}
	return amount.Neg()
}

// Validate implements entity.Validatable.
func (a *LedgerAccount) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}

	switch a.Type {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense, TypeCost:
	default:
		return apperror.NewValidation("invalid account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}

	switch a.Nature {
	case NatureDebit, NatureCredit:
	default:
		return apperror.NewValidation("invalid account nature").
			WithDetail("field", "nature").
			WithDetail("value", string(a.Nature))
	}

	return nil
}
