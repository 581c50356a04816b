package journal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/accounting/period"
	"kardex/internal/domain/catalogs/account"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Draft is the input to Post: an unbalanced-until-proven-otherwise set of
// movements plus source metadata. The engine assigns the folio and totals.
type Draft struct {
	Date    time.Time
	Concept string

	Movements []Movement

	SourceType  string
	SourceID    id.ID
	SourceFolio string
	AutoPosted  bool
}

// AuditSink receives posted entries for the append-only audit trail.
// Best-effort: audit failures are logged, never roll back a posting.
type AuditSink interface {
	RecordPosted(ctx context.Context, e *Entry)
}

// Engine posts balanced journal entries and maintains account balances.
type Engine struct {
	entries   Repository
	accounts  account.Repository
	numerator *numerator.Service
	periods   period.Policy
	txManager tx.Manager
	audit     AuditSink
}

// NewEngine creates the posting engine. audit may be nil.
func NewEngine(
	entries Repository,
	accounts account.Repository,
	num *numerator.Service,
	periods period.Policy,
	txManager tx.Manager,
	audit AuditSink,
) *Engine {
	return &Engine{
		entries:   entries,
		accounts:  accounts,
		numerator: num,
		periods:   periods,
		txManager: txManager,
		audit:     audit,
	}
}

// Post validates, numbers and persists a journal entry, applying every
// movement to its account balance in the same transaction. Either the entry
// and all balance changes commit together or nothing does.
func (e *Engine) Post(ctx context.Context, draft Draft) (*Entry, error) {
	if err := e.validate(&draft); err != nil {
		return nil, err
	}
	if err := e.periods.CanPost(ctx, draft.Date); err != nil {
		return nil, err
	}

	totalDebit, totalCredit := Totals(draft.Movements)
	if totalDebit != totalCredit {
		return nil, apperror.NewUnbalancedEntry(totalDebit, totalCredit)
	}

	entry := &Entry{
		Type:        ClassifyEntryType(draft.SourceType),
		Date:        draft.Date,
		Concept:     draft.Concept,
		Movements:   draft.Movements,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Status:      StatusPosted,
		SourceType:  draft.SourceType,
		SourceID:    draft.SourceID,
		SourceFolio: draft.SourceFolio,
		AutoPosted:  draft.AutoPosted,
	}
	entry.BaseEntity = entity.NewBaseEntity()

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.applyToAccounts(ctx, entry.Movements); err != nil {
			return err
		}

		// Strict numbering inside the transaction keeps folios gap-free:
		// a rollback releases the sequence row lock without consuming it.
		folio, err := e.numerator.Next(ctx, numerator.JournalConfig(), numerator.DefaultOptions(), entry.Date)
		if err != nil {
			return fmt.Errorf("assign folio: %w", err)
		}
		entry.Folio = folio

		if err := e.entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.audit != nil {
		e.audit.RecordPosted(ctx, entry)
	}

	logger.Info(ctx, "posted journal entry",
		"folio", entry.Folio,
		"type", string(entry.Type),
		"total", int64(entry.TotalDebit),
		"movements", len(entry.Movements),
	)
	return entry, nil
}

// Void reverses a posted entry by posting a mirror-image entry and marking
// the original void. The original's balance effect is undone by the reversal;
// history stays append-only.
func (e *Engine) Void(ctx context.Context, entryID id.ID, concept string) (*Entry, error) {
	var reversal *Entry

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		original, err := e.entries.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only posted entries can be voided").
				WithDetail("folio", original.Folio).
				WithDetail("status", string(original.Status))
		}

		if concept == "" {
			concept = "Cancelación de " + original.Folio
		}

		mirrored := make([]Movement, len(original.Movements))
		for i, m := range original.Movements {
			mirrored[i] = m
			if m.Side == account.SideDebit {
				mirrored[i].Side = account.SideCredit
			} else {
				mirrored[i].Side = account.SideDebit
			}
		}

		reversal, err = e.Post(ctx, Draft{
			Date:        time.Now().UTC(),
			Concept:     concept,
			Movements:   mirrored,
			SourceType:  "voidEntry",
			SourceID:    original.ID,
			SourceFolio: original.Folio,
			AutoPosted:  true,
		})
		if err != nil {
			return err
		}

		return e.entries.MarkVoid(ctx, original.ID, reversal.ID)
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// EntriesBySource returns the entries posted for a business document.
func (e *Engine) EntriesBySource(ctx context.Context, sourceID id.ID) ([]*Entry, error) {
	return e.entries.GetBySource(ctx, sourceID)
}

// GetByFolio looks up a single entry by its folio.
func (e *Engine) GetByFolio(ctx context.Context, folio string) (*Entry, error) {
	return e.entries.GetByFolio(ctx, folio)
}

// List returns entries matching the filter.
func (e *Engine) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return e.entries.List(ctx, filter)
}

// validate checks draft shape: dates, concept and per-movement invariants
// that need no account state.
func (e *Engine) validate(draft *Draft) error {
	if len(draft.Movements) < 2 {
		return apperror.NewValidation("entry requires at least two movements")
	}
	if draft.Date.IsZero() {
		draft.Date = time.Now().UTC()
	}
	if draft.Concept == "" {
		return apperror.NewValidation("entry concept is required")
	}

	for i := range draft.Movements {
		m := &draft.Movements[i]
		if id.IsNil(m.AccountID) {
			return apperror.NewValidation("movement account is required").
				WithDetail("index", i)
		}
		if m.Side != account.SideDebit && m.Side != account.SideCredit {
			return apperror.NewValidation("movement side must be debit or credit").
				WithDetail("index", i)
		}
		if !m.Amount.IsPositive() {
			return apperror.NewValidation("movement amount must be positive").
				WithDetail("index", i)
		}
	}
	return nil
}

// applyToAccounts locks each touched account in sorted id order, verifies it
// is active, and applies the nature-aware balance delta.
func (e *Engine) applyToAccounts(ctx context.Context, movements []Movement) error {
	deltas := make(map[id.ID]int64)
	order := make([]id.ID, 0, len(movements))
	for i := range movements {
		if _, seen := deltas[movements[i].AccountID]; !seen {
			order = append(order, movements[i].AccountID)
		}
		deltas[movements[i].AccountID] = 0
	}
	sort.Slice(order, func(i, j int) bool {
		return strings.Compare(order[i].String(), order[j].String()) < 0
	})

	locked := make(map[id.ID]*account.LedgerAccount, len(order))
	for _, accountID := range order {
		acc, err := e.accounts.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.Active {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot post to inactive account").
				WithDetail("account_code", acc.Code)
		}
		locked[accountID] = acc
	}

	for i := range movements {
		m := &movements[i]
		acc := locked[m.AccountID]
		m.AccountCode = acc.Code
		deltas[m.AccountID] += int64(acc.BalanceDelta(m.Side, m.Amount))
	}

	for _, accountID := range order {
		if err := e.accounts.ApplyBalanceChange(ctx, accountID, types.MinorUnits(deltas[accountID])); err != nil {
			return fmt.Errorf("apply balance change: %w", err)
		}
	}
	return nil
}
