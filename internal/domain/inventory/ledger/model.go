// Package ledger provides the append-only stock movement ledger.
//
// Movements are immutable facts; quantity on hand and per-lot balances are
// folds over movement history, never independently authoritative counters.
// Corrections are new offsetting movements, never edits.
package ledger

import (
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// MovementKind is a closed enum of movement variants.
type MovementKind string

const (
	KindInboundPurchase    MovementKind = "inbound-purchase"
	KindInboundAdjustment  MovementKind = "inbound-adjustment"
	KindOutboundSale       MovementKind = "outbound-sale"
	KindOutboundAdjustment MovementKind = "outbound-adjustment"
	KindProductionConsume  MovementKind = "production-consume"
	KindProductionOutput   MovementKind = "production-output"
)

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	switch k {
	case KindInboundPurchase, KindInboundAdjustment, KindOutboundSale,
		KindOutboundAdjustment, KindProductionConsume, KindProductionOutput:
		return true
	}
	return false
}

// Inbound reports whether the kind increases stock.
func (k MovementKind) Inbound() bool {
	switch k {
	case KindInboundPurchase, KindInboundAdjustment, KindProductionOutput:
		return true
	}
	return false
}

// Corrective reports whether an outbound kind is a correction rather than a
// sale. Shortages on corrections surface as InvalidLotState, not
// InsufficientStock.
func (k MovementKind) Corrective() bool {
	return k == KindOutboundAdjustment || k == KindProductionConsume
}

// SourceRef ties a movement to the business event that produced it.
type SourceRef struct {
	Type  string `db:"source_type" json:"sourceType"`
	ID    id.ID  `db:"source_id" json:"sourceId"`
	Folio string `db:"source_folio" json:"sourceFolio"`
}

// Movement is one append-only fact in the stock ledger.
// Quantity is a positive magnitude; sign is derived from Kind.
type Movement struct {
	// LineID is the unique identifier for this line (UUIDv7).
	// Its time ordering is the insertion-order tie-break for folds.
	LineID id.ID `db:"line_id" json:"lineId"`

	ProductID   id.ID   `db:"product_id" json:"productId"`
	WarehouseID id.ID   `db:"warehouse_id" json:"warehouseId"`
	LotCode     *string `db:"lot_code" json:"lotCode,omitempty"`

	Kind     MovementKind     `db:"kind" json:"kind"`
	Quantity types.Quantity   `db:"quantity" json:"quantity"`
	UnitCost types.MinorUnits `db:"unit_cost" json:"unitCost"`

	// Expiry applies to inbound movements creating or extending a lot
	Expiry *time.Time `db:"expiry" json:"expiry,omitempty"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	Source SourceRef `db:"-" json:"source"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with a generated line id.
func NewMovement(productID, warehouseID id.ID, lotCode *string, kind MovementKind, qty types.Quantity, unitCost types.MinorUnits, period time.Time, source SourceRef) Movement {
	return Movement{
		LineID:      id.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		LotCode:     lotCode,
		Kind:        kind,
		Quantity:    qty,
		UnitCost:    unitCost,
		Period:      period,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}
}

// SignedQuantity returns the quantity with direction applied.
func (m *Movement) SignedQuantity() types.Quantity {
	if m.Kind.Inbound() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// LotStock is the derived balance of one (product, warehouse, lot) key.
// It is computed by folding movements and may be cached, but must always be
// reproducible from the movement log.
type LotStock struct {
	ProductID   id.ID   `json:"productId"`
	WarehouseID id.ID   `json:"warehouseId"`
	LotCode     *string `json:"lotCode,omitempty"`

	Remaining types.Quantity   `json:"remaining"`
	UnitCost  types.MinorUnits `json:"unitCost"`

	Expiry     *time.Time `json:"expiry,omitempty"`
	ReceivedAt time.Time  `json:"receivedAt"`
}

// Turnover summarizes receipts and expenses for a key over a period.
type Turnover struct {
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipts       types.Quantity `json:"receipts"`
	Expenses       types.Quantity `json:"expenses"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// lotKeyOf normalizes the nullable lot code into a map key.
func lotKeyOf(lotCode *string) string {
	if lotCode == nil {
		return ""
	}
	return *lotCode
}

// FoldLots derives per-lot balances from movement history.
//
// Movements must be in insertion order. A lot's unit cost, expiry and
// received timestamp come from its first inbound movement; later inbound
// movements on the same lot only add quantity. Lots fold out in first-seen
// order, so replaying the same log always produces the same slice.
func FoldLots(movements []Movement) []LotStock {
	index := make(map[string]int)
	lots := make([]LotStock, 0)

	for i := range movements {
		m := &movements[i]
		key := lotKeyOf(m.LotCode)

		pos, seen := index[key]
		if !seen {
			pos = len(lots)
			index[key] = pos
			lots = append(lots, LotStock{
				ProductID:   m.ProductID,
				WarehouseID: m.WarehouseID,
				LotCode:     m.LotCode,
				Expiry:      m.Expiry,
				ReceivedAt:  m.Period,
			})
			if m.Kind.Inbound() {
				lots[pos].UnitCost = m.UnitCost
			}
		}

		lot := &lots[pos]
		if lot.Expiry == nil && m.Expiry != nil {
			lot.Expiry = m.Expiry
		}
		lot.Remaining += m.SignedQuantity()
	}

	return lots
}

// FoldQuantity sums signed quantities over movement history.
func FoldQuantity(movements []Movement) types.Quantity {
	var total types.Quantity
	for i := range movements {
		total += movements[i].SignedQuantity()
	}
	return total
}
