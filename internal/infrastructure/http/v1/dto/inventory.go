package dto

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/inventory/ledger"
)

// MovementRequest is the payload for recording a stock movement.
type MovementRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	WarehouseID string  `json:"warehouseId" binding:"required"`
	LotCode     *string `json:"lotCode,omitempty"`

	Kind     string         `json:"kind" binding:"required"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost int64          `json:"unitCost"`

	Expiry *time.Time `json:"expiry,omitempty"`
	Period *time.Time `json:"period,omitempty"`

	SourceType  string `json:"sourceType"`
	SourceID    string `json:"sourceId,omitempty"`
	SourceFolio string `json:"sourceFolio,omitempty"`
}

// ToMovement converts the request to a domain movement.
func (r *MovementRequest) ToMovement() (ledger.Movement, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return ledger.Movement{}, apperror.NewValidation("invalid productId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return ledger.Movement{}, apperror.NewValidation("invalid warehouseId format")
	}

	source := ledger.SourceRef{Type: r.SourceType, Folio: r.SourceFolio}
	if r.SourceID != "" {
		sourceID, err := id.Parse(r.SourceID)
		if err != nil {
			return ledger.Movement{}, apperror.NewValidation("invalid sourceId format")
		}
		source.ID = sourceID
	} else {
		source.ID = id.New()
	}

	period := time.Now().UTC()
	if r.Period != nil {
		period = *r.Period
	}

	m := ledger.NewMovement(
		productID, warehouseID, r.LotCode,
		ledger.MovementKind(r.Kind), r.Quantity, types.MinorUnits(r.UnitCost),
		period, source,
	)
	m.Expiry = r.Expiry
	return m, nil
}

// MovementResponse is the wire shape of a recorded movement.
type MovementResponse struct {
	LineID      string  `json:"lineId"`
	ProductID   string  `json:"productId"`
	WarehouseID string  `json:"warehouseId"`
	LotCode     *string `json:"lotCode,omitempty"`

	Kind     string         `json:"kind"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost int64          `json:"unitCost"`

	Expiry *time.Time `json:"expiry,omitempty"`
	Period time.Time  `json:"period"`

	SourceType  string `json:"sourceType"`
	SourceFolio string `json:"sourceFolio,omitempty"`
}

// FromMovement maps a domain movement to the wire shape.
func FromMovement(m ledger.Movement) MovementResponse {
	return MovementResponse{
		LineID:      m.LineID.String(),
		ProductID:   m.ProductID.String(),
		WarehouseID: m.WarehouseID.String(),
		LotCode:     m.LotCode,
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		UnitCost:    int64(m.UnitCost),
		Expiry:      m.Expiry,
		Period:      m.Period,
		SourceType:  m.Source.Type,
		SourceFolio: m.Source.Folio,
	}
}

// MovementListResponse wraps movement history.
type MovementListResponse struct {
	Items      []MovementResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
}

// LotResponse is the wire shape of a derived lot balance.
type LotResponse struct {
	LotCode    *string        `json:"lotCode,omitempty"`
	Remaining  types.Quantity `json:"remaining"`
	UnitCost   int64          `json:"unitCost"`
	Expiry     *time.Time     `json:"expiry,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// FromLotStock maps a derived lot balance to the wire shape.
func FromLotStock(l ledger.LotStock) LotResponse {
	return LotResponse{
		LotCode:    l.LotCode,
		Remaining:  l.Remaining,
		UnitCost:   int64(l.UnitCost),
		Expiry:     l.Expiry,
		ReceivedAt: l.ReceivedAt,
	}
}

// LotListResponse wraps lot balances.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
}

// TurnoverResponse is the wire shape of a turnover report.
type TurnoverResponse struct {
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipts       types.Quantity `json:"receipts"`
	Expenses       types.Quantity `json:"expenses"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// FromTurnover maps a turnover report to the wire shape.
func FromTurnover(t ledger.Turnover) TurnoverResponse {
	return TurnoverResponse{
		OpeningBalance: t.OpeningBalance,
		Receipts:       t.Receipts,
		Expenses:       t.Expenses,
		ClosingBalance: t.ClosingBalance,
	}
}
