package dto

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/domain/inventory/allocation"
)

// FulfillLineRequest is one requested product line.
type FulfillLineRequest struct {
	ProductID   string         `json:"productId" binding:"required"`
	WarehouseID string         `json:"warehouseId" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`
	UnitPrice   int64          `json:"unitPrice"`
}

// FulfillRequest is the payload for a fulfillment attempt.
type FulfillRequest struct {
	SourceType  string     `json:"sourceType" binding:"required"`
	SourceID    string     `json:"sourceId,omitempty"`
	SourceFolio string     `json:"sourceFolio,omitempty"`
	Concept     string     `json:"concept" binding:"required"`
	Date        *time.Time `json:"date,omitempty"`

	Lines []FulfillLineRequest `json:"lines" binding:"required"`

	Policy string `json:"policy,omitempty"`

	Attributes map[string]any `json:"attributes,omitempty"`
}

// ToOrder converts the request to a domain order.
func (r *FulfillRequest) ToOrder() (fulfillment.Order, error) {
	order := fulfillment.Order{
		SourceType:  r.SourceType,
		SourceFolio: r.SourceFolio,
		Concept:     r.Concept,
		Policy:      allocation.Policy(r.Policy),
		Attributes:  r.Attributes,
	}
	if r.Date != nil {
		order.Date = *r.Date
	}
	if r.SourceID != "" {
		sourceID, err := id.Parse(r.SourceID)
		if err != nil {
			return fulfillment.Order{}, apperror.NewValidation("invalid sourceId format")
		}
		order.SourceID = sourceID
	}

	order.Lines = make([]fulfillment.LineRequest, 0, len(r.Lines))
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return fulfillment.Order{}, apperror.NewValidation("invalid productId format").
				WithDetail("index", i)
		}
		warehouseID, err := id.Parse(line.WarehouseID)
		if err != nil {
			return fulfillment.Order{}, apperror.NewValidation("invalid warehouseId format").
				WithDetail("index", i)
		}
		order.Lines = append(order.Lines, fulfillment.LineRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    line.Quantity,
			UnitPrice:   types.MinorUnits(line.UnitPrice),
		})
	}

	return order, nil
}

// AllocationLineResponse is one lot portion of a plan.
type AllocationLineResponse struct {
	LotCode  *string        `json:"lotCode,omitempty"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost int64          `json:"unitCost"`
}

// AllocationPlanResponse is the wire shape of one line's allocation.
type AllocationPlanResponse struct {
	ProductID   string                   `json:"productId"`
	WarehouseID string                   `json:"warehouseId"`
	Requested   types.Quantity           `json:"requested"`
	Policy      string                   `json:"policy"`
	Lines       []AllocationLineResponse `json:"lines"`
	Cost        int64                    `json:"cost"`
}

// FulfillResponse is the outcome of a fulfillment attempt.
type FulfillResponse struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`

	SourceID string `json:"sourceId,omitempty"`

	Plans     []AllocationPlanResponse `json:"plans,omitempty"`
	Movements []MovementResponse       `json:"movements,omitempty"`
	Entry     *EntryResponse           `json:"entry,omitempty"`

	COGS    int64 `json:"cogs"`
	Revenue int64 `json:"revenue"`
}

// FromFulfillResult maps a fulfillment result to the wire shape.
func FromFulfillResult(result *fulfillment.Result, sourceID id.ID) FulfillResponse {
	resp := FulfillResponse{
		State:   string(result.State),
		Reason:  result.Reason,
		COGS:    int64(result.COGS),
		Revenue: int64(result.Revenue),
	}
	if !id.IsNil(sourceID) {
		resp.SourceID = sourceID.String()
	}

	for _, plan := range result.Plans {
		planResp := AllocationPlanResponse{
			ProductID:   plan.ProductID.String(),
			WarehouseID: plan.WarehouseID.String(),
			Requested:   plan.Requested,
			Policy:      string(plan.Policy),
			Cost:        int64(plan.Cost()),
		}
		for _, line := range plan.Lines {
			planResp.Lines = append(planResp.Lines, AllocationLineResponse{
				LotCode:  line.Lot.LotCode,
				Quantity: line.Quantity,
				UnitCost: int64(line.Lot.UnitCost),
			})
		}
		resp.Plans = append(resp.Plans, planResp)
	}

	for _, m := range result.Movements {
		resp.Movements = append(resp.Movements, FromMovement(m))
	}

	if result.Entry != nil {
		entry := FromEntry(result.Entry)
		resp.Entry = &entry
	}

	return resp
}

// CancelRequest is the payload for compensating a committed fulfillment.
type CancelRequest struct {
	Reason string `json:"reason"`
}
