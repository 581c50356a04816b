package journal

import (
	"context"
	"fmt"

	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/account"
	"kardex/pkg/logger"
)

// Replayer rebuilds account balances from journal history. Balances are
// derived state: after a crash or suspected corruption they are zeroed and
// re-derived by re-applying every entry in chronological order.
type Replayer struct {
	entries   Repository
	accounts  account.Repository
	txManager tx.Manager
}

// NewReplayer creates a balance replayer.
func NewReplayer(entries Repository, accounts account.Repository, txManager tx.Manager) *Replayer {
	return &Replayer{entries: entries, accounts: accounts, txManager: txManager}
}

// ReplayResult summarizes a completed replay.
type ReplayResult struct {
	EntriesApplied int   `json:"entriesApplied"`
	EntriesSkipped int   `json:"entriesSkipped"`
	AccountsFinal  int   `json:"accountsFinal"`
	TotalDebit     int64 `json:"totalDebit"`
}

// Replay zeroes every account balance and re-applies all non-draft entries.
// Void entries are applied as posted: their effect is undone by the reversal
// entry that voided them, so skipping them would double-reverse.
// Runs in one transaction; a partial replay never becomes visible.
func (r *Replayer) Replay(ctx context.Context) (*ReplayResult, error) {
	result := &ReplayResult{}

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.accounts.ResetBalances(ctx); err != nil {
			return fmt.Errorf("reset balances: %w", err)
		}

		accounts, err := r.accounts.List(ctx, false)
		if err != nil {
			return fmt.Errorf("load chart of accounts: %w", err)
		}
		byID := make(map[id.ID]*account.LedgerAccount, len(accounts))
		for _, acc := range accounts {
			byID[acc.ID] = acc
		}
		result.AccountsFinal = len(accounts)

		entries, err := r.entries.ListChronological(ctx)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}

		for _, entry := range entries {
			if entry.Status == StatusDraft {
				result.EntriesSkipped++
				continue
			}

			// One balance change per account per entry, same shape as the
			// live posting path, so movement counts replay identically.
			deltas := make(map[id.ID]types.MinorUnits)
			order := make([]id.ID, 0, len(entry.Movements))
			for i := range entry.Movements {
				m := &entry.Movements[i]
				acc, ok := byID[m.AccountID]
				if !ok {
					return fmt.Errorf("entry %s references unknown account %s", entry.Folio, m.AccountID)
				}
				if _, seen := deltas[m.AccountID]; !seen {
					order = append(order, m.AccountID)
				}
				deltas[m.AccountID] += acc.BalanceDelta(m.Side, m.Amount)
			}

			for _, accountID := range order {
				if err := r.accounts.ApplyBalanceChange(ctx, accountID, deltas[accountID]); err != nil {
					return fmt.Errorf("apply replayed balance: %w", err)
				}
			}

			result.EntriesApplied++
			result.TotalDebit += int64(entry.TotalDebit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "replayed journal into account balances",
		"entries_applied", result.EntriesApplied,
		"entries_skipped", result.EntriesSkipped,
	)
	return result, nil
}
