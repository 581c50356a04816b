package fulfillment

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/accounting/rules"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/inventory/allocation"
	"kardex/internal/domain/inventory/ledger"
	"kardex/pkg/logger"
)

// Orchestrator drives a fulfillment attempt through its states inside one
// transaction. Allocation is advisory; the ledger's locked balance check is
// the authority, so a concurrent consumer between plan and commit surfaces
// as InsufficientStock and the whole attempt rejects.
type Orchestrator struct {
	selector  *allocation.Selector
	stock     *ledger.Service
	engine    *journal.Engine
	accounts  account.Repository
	rules     *rules.Engine
	txManager tx.Manager
}

// NewOrchestrator wires the fulfillment flow. rulesEngine may be nil, in
// which case the receivable account is always debited.
func NewOrchestrator(
	selector *allocation.Selector,
	stock *ledger.Service,
	engine *journal.Engine,
	accounts account.Repository,
	rulesEngine *rules.Engine,
	txManager tx.Manager,
) *Orchestrator {
	return &Orchestrator{
		selector:  selector,
		stock:     stock,
		engine:    engine,
		accounts:  accounts,
		rules:     rulesEngine,
		txManager: txManager,
	}
}

// Fulfill runs the full flow: allocate every line, consume the planned lots,
// and post the costed journal entry. Any failure rolls the transaction back
// and returns a rejected result; partial fulfillment never commits.
func (o *Orchestrator) Fulfill(ctx context.Context, order Order, acct Accounts) (*Result, error) {
	if err := o.validate(&order, &acct); err != nil {
		return nil, err
	}

	result := &Result{State: StateRequested}

	err := o.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plans, err := o.allocate(ctx, &order)
		if err != nil {
			return err
		}
		result.Plans = plans
		result.State = StateAllocated

		movements := o.buildMovements(&order, plans)
		if err := o.stock.RecordMovements(ctx, movements); err != nil {
			return err
		}
		result.Movements = movements

		for i, plan := range plans {
			result.COGS += plan.Cost()
			result.Revenue += order.Lines[i].Quantity.MulMinorUnits(order.Lines[i].UnitPrice)
		}

		entry, err := o.postEntry(ctx, &order, &acct, result.COGS, result.Revenue)
		if err != nil {
			return err
		}
		result.Entry = entry
		result.State = StatePosted
		return nil
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.HTTPStatus < 500 {
			logger.Warn(ctx, "fulfillment rejected",
				"source_folio", order.SourceFolio,
				"code", appErr.Code,
			)
			return &Result{State: StateRejected, Reason: appErr.Message}, err
		}
		return nil, err
	}

	result.State = StateCommitted
	logger.Info(ctx, "fulfillment committed",
		"source_folio", order.SourceFolio,
		"entry_folio", result.Entry.Folio,
		"cogs", int64(result.COGS),
		"revenue", int64(result.Revenue),
	)
	return result, nil
}

// Cancel compensates a committed fulfillment: reversing stock movements plus
// a voiding journal entry, atomically.
func (o *Orchestrator) Cancel(ctx context.Context, sourceID id.ID, reason string) error {
	return o.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reversalSource := ledger.SourceRef{
			Type:  "fulfillmentCancel",
			ID:    id.New(),
			Folio: reason,
		}
		if _, err := o.stock.Reverse(ctx, sourceID, reversalSource); err != nil {
			return err
		}

		entries, err := o.engine.EntriesBySource(ctx, sourceID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Status != journal.StatusPosted {
				continue
			}
			if _, err := o.engine.Void(ctx, entry.ID, reason); err != nil {
				return err
			}
		}
		return nil
	})
}

func (o *Orchestrator) validate(order *Order, acct *Accounts) error {
	if len(order.Lines) == 0 {
		return apperror.NewValidation("order requires at least one line")
	}
	if order.Policy == "" {
		order.Policy = allocation.PolicyFIFO
	}
	if order.Date.IsZero() {
		order.Date = time.Now().UTC()
	}
	if id.IsNil(order.SourceID) {
		order.SourceID = id.New()
	}
	if acct.InventoryCode == "" || acct.COGSCode == "" ||
		acct.ReceivableCode == "" || acct.RevenueCode == "" {
		return apperror.NewValidation("fulfillment account codes are incomplete")
	}
	for i := range order.Lines {
		if !order.Lines[i].Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("index", i)
		}
		if order.Lines[i].UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price cannot be negative").
				WithDetail("index", i)
		}
	}
	return nil
}

// allocate plans every line before anything is consumed, so shortages reject
// the attempt with zero writes.
func (o *Orchestrator) allocate(ctx context.Context, order *Order) ([]*allocation.Plan, error) {
	plans := make([]*allocation.Plan, 0, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		plan, err := o.selector.Allocate(ctx, line.ProductID, line.WarehouseID, line.Quantity, order.Policy)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// buildMovements turns allocation plans into outbound-sale movements costed
// at each consumed lot's unit cost.
func (o *Orchestrator) buildMovements(order *Order, plans []*allocation.Plan) []ledger.Movement {
	source := ledger.SourceRef{
		Type:  order.SourceType,
		ID:    order.SourceID,
		Folio: order.SourceFolio,
	}

	var movements []ledger.Movement
	for _, plan := range plans {
		for _, line := range plan.Lines {
			movements = append(movements, ledger.NewMovement(
				plan.ProductID, plan.WarehouseID, line.Lot.LotCode,
				ledger.KindOutboundSale, line.Quantity, line.Lot.UnitCost,
				order.Date, source,
			))
		}
	}
	return movements
}

// postEntry posts the four-movement costed entry:
//
//	debit  COGS                 cost of consumed lots
//	credit Inventory            same amount
//	debit  Receivable or Cash   revenue at order prices
//	credit Revenue              same amount
func (o *Orchestrator) postEntry(ctx context.Context, order *Order, acct *Accounts, cogs, revenue types.MinorUnits) (*journal.Entry, error) {
	debitCode := acct.ReceivableCode
	if o.rules != nil {
		resolved, err := o.rules.ResolveAccount(ctx, order.Attributes)
		if err != nil {
			return nil, err
		}
		debitCode = resolved
	}

	codes := []string{acct.COGSCode, acct.InventoryCode, debitCode, acct.RevenueCode}
	ids := make(map[string]id.ID, len(codes))
	for _, code := range codes {
		if _, ok := ids[code]; ok {
			continue
		}
		acc, err := o.accounts.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		ids[code] = acc.ID
	}

	movements := []journal.Movement{
		{AccountID: ids[acct.COGSCode], Side: account.SideDebit, Amount: cogs},
		{AccountID: ids[acct.InventoryCode], Side: account.SideCredit, Amount: cogs},
		{AccountID: ids[debitCode], Side: account.SideDebit, Amount: revenue},
		{AccountID: ids[acct.RevenueCode], Side: account.SideCredit, Amount: revenue},
	}

	entry, err := o.engine.Post(ctx, journal.Draft{
		Date:        order.Date,
		Concept:     order.Concept,
		Movements:   movements,
		SourceType:  order.SourceType,
		SourceID:    order.SourceID,
		SourceFolio: order.SourceFolio,
		AutoPosted:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("post fulfillment entry: %w", err)
	}
	return entry, nil
}
