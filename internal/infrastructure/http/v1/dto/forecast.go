package dto

import (
	"kardex/internal/core/types"
	"kardex/internal/domain/inventory/forecast"
)

// ReplenishmentResponse is the wire shape of a forecast for one product.
type ReplenishmentResponse struct {
	ProductID  string `json:"productId"`
	WindowDays int    `json:"windowDays"`

	AvgDailyDemand types.Money    `json:"avgDailyDemand"`
	SafetyStock    types.Quantity `json:"safetyStock"`
	ReorderPoint   types.Quantity `json:"reorderPoint"`

	SuggestedOrder int64  `json:"suggestedOrder"`
	Level          string `json:"level"`
}

// FromReplenishment maps a forecast to the wire shape.
func FromReplenishment(r forecast.Replenishment) ReplenishmentResponse {
	return ReplenishmentResponse{
		ProductID:      r.ProductID.String(),
		WindowDays:     r.WindowDays,
		AvgDailyDemand: r.AvgDailyDemand,
		SafetyStock:    r.SafetyStock,
		ReorderPoint:   r.ReorderPoint,
		SuggestedOrder: r.SuggestedOrder,
		Level:          string(r.Level),
	}
}
