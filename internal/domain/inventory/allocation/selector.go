// Package allocation selects which lots satisfy an outgoing order.
//
// Allocation is advisory: it reads the ledger and returns a plan without
// reserving anything. Callers must re-validate at write time; the ledger's
// locked fold is the authority.
package allocation

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/inventory/ledger"
)

// Policy selects the lot consumption order.
type Policy string

const (
	// PolicyFIFO consumes the oldest received lot first.
	PolicyFIFO Policy = "FIFO"
	// PolicyFEFO consumes the soonest-expiring lot first, null expiries last.
	PolicyFEFO Policy = "FEFO"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyFIFO || p == PolicyFEFO
}

// Line is one lot portion of an allocation plan.
type Line struct {
	Lot      ledger.LotStock `json:"lot"`
	Quantity types.Quantity  `json:"quantity"`
}

// Plan is an ordered allocation of lots covering a requested quantity.
type Plan struct {
	ProductID   id.ID          `json:"productId"`
	WarehouseID id.ID          `json:"warehouseId"`
	Requested   types.Quantity `json:"requested"`
	Policy      Policy         `json:"policy"`
	Lines       []Line         `json:"lines"`
}

// Cost returns the costed value of the plan at lot unit costs.
func (p *Plan) Cost() types.MinorUnits {
	var total types.MinorUnits
	for i := range p.Lines {
		total += p.Lines[i].Quantity.MulMinorUnits(p.Lines[i].Lot.UnitCost)
	}
	return total
}

// LotReader is the ledger read path the selector depends on.
type LotReader interface {
	Lots(ctx context.Context, productID, warehouseID id.ID, order ledger.LotOrder) ([]ledger.LotStock, error)
}

// Selector builds allocation plans from derived lot balances.
type Selector struct {
	lots LotReader
}

// NewSelector creates a lot selector.
func NewSelector(lots LotReader) *Selector {
	return &Selector{lots: lots}
}

// Allocate greedily consumes lots in policy order until the requested
// quantity is covered. If lots run out first, it returns InsufficientStock
// carrying the shortfall; whether to partially fulfill is the caller's call.
func (s *Selector) Allocate(ctx context.Context, productID, warehouseID id.ID, requested types.Quantity, policy Policy) (*Plan, error) {
	if !requested.IsPositive() {
		return nil, apperror.NewValidation("requested quantity must be positive")
	}
	if !policy.Valid() {
		return nil, apperror.NewValidation("unknown allocation policy").
			WithDetail("policy", string(policy))
	}

	order := ledger.OrderReceived
	if policy == PolicyFEFO {
		order = ledger.OrderExpiry
	}

	lots, err := s.lots.Lots(ctx, productID, warehouseID, order)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Policy:      policy,
	}

	need := requested
	var available types.Quantity
	for _, lot := range lots {
		available += lot.Remaining
		if !need.IsPositive() {
			continue
		}
		take := lot.Remaining.Min(need)
		plan.Lines = append(plan.Lines, Line{Lot: lot, Quantity: take})
		need -= take
	}

	if need.IsPositive() {
		return nil, apperror.NewInsufficientStock(
			productID.String(), warehouseID.String(),
			requested, available, need,
		)
	}

	return plan, nil
}
