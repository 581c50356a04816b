// Package forecast computes trailing-average demand and replenishment
// suggestions from stock ledger history.
package forecast

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/product"
)

// Level classifies how urgent a replenishment suggestion is.
type Level string

const (
	LevelSafe     Level = "safe"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Policy holds the replenishment constants. These are configuration, not
// business law; defaults match the ERP's historical values.
type Policy struct {
	// SafetyFactor multiplies average daily demand into safety stock
	SafetyFactor float64

	// CriticalThreshold is the suggested-order size (whole units) above
	// which the level escalates from warning to critical
	CriticalThreshold int64

	// DefaultLeadTimeDays applies when the product carries no lead time
	DefaultLeadTimeDays int

	// WindowDays is the default trailing consumption window
	WindowDays int
}

// DefaultPolicy returns the standard constants.
func DefaultPolicy() Policy {
	return Policy{
		SafetyFactor:        3,
		CriticalThreshold:   50,
		DefaultLeadTimeDays: 5,
		WindowDays:          30,
	}
}

// Replenishment is the forecast output for one product.
type Replenishment struct {
	ProductID id.ID `json:"productId"`

	WindowDays int `json:"windowDays"`

	// AvgDailyDemand in units per day
	AvgDailyDemand types.Money `json:"avgDailyDemand"`

	SafetyStock  types.Quantity `json:"safetyStock"`
	ReorderPoint types.Quantity `json:"reorderPoint"`

	// SuggestedOrder in whole units
	SuggestedOrder int64 `json:"suggestedOrder"`

	Level Level `json:"level"`
}

// ConsumptionReader is the ledger read path the forecaster depends on.
type ConsumptionReader interface {
	ConsumedQuantity(ctx context.Context, productID id.ID, from, to time.Time) (types.Quantity, error)
	TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error)
}

// Forecaster derives demand and replenishment suggestions. Read-only; it
// never errors on missing history, degrading to zero demand instead.
type Forecaster struct {
	ledger ConsumptionReader
	policy Policy
}

// New creates a forecaster with the given policy.
func New(ledger ConsumptionReader, policy Policy) *Forecaster {
	if policy.WindowDays <= 0 {
		policy.WindowDays = DefaultPolicy().WindowDays
	}
	return &Forecaster{ledger: ledger, policy: policy}
}

// ComputeReplenishment evaluates the trailing window ending now.
//
//	avgDailyDemand = consumed / windowDays
//	safetyStock    = avgDailyDemand * SafetyFactor
//	reorderPoint   = avgDailyDemand * leadTimeDays + safetyStock
//	suggestedOrder = max(reorderPoint - onHand, 0), whole units
func (f *Forecaster) ComputeReplenishment(ctx context.Context, p *product.Product, windowDays int) (Replenishment, error) {
	if p == nil {
		return Replenishment{}, apperror.NewValidation("product is required")
	}
	if windowDays <= 0 {
		windowDays = f.policy.WindowDays
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -windowDays)

	consumed, err := f.ledger.ConsumedQuantity(ctx, p.ID, from, now)
	if err != nil {
		return Replenishment{}, err
	}

	onHand, err := f.ledger.TotalOnHand(ctx, p.ID)
	if err != nil {
		return Replenishment{}, err
	}

	return f.compute(p, windowDays, consumed, onHand), nil
}

// compute is the pure arithmetic core, split out for direct testing.
func (f *Forecaster) compute(p *product.Product, windowDays int, consumed, onHand types.Quantity) Replenishment {
	leadTime := p.LeadTimeDays
	if leadTime <= 0 {
		leadTime = f.policy.DefaultLeadTimeDays
	}

	avg := decimal.New(consumed.Int64Scaled(), -4).
		Div(decimal.NewFromInt(int64(windowDays)))

	safety := avg.Mul(decimal.NewFromFloat(f.policy.SafetyFactor))
	reorderPoint := avg.Mul(decimal.NewFromInt(int64(leadTime))).Add(safety)

	suggested := reorderPoint.Sub(decimal.New(onHand.Int64Scaled(), -4))
	if suggested.IsNegative() {
		suggested = decimal.Zero
	}
	suggestedUnits := suggested.Round(0).IntPart()

	level := LevelSafe
	switch {
	case suggestedUnits > f.policy.CriticalThreshold:
		level = LevelCritical
	case suggestedUnits > 0:
		level = LevelWarning
	}

	return Replenishment{
		ProductID:      p.ID,
		WindowDays:     windowDays,
		AvgDailyDemand: avg,
		SafetyStock:    types.NewQuantityFromFloat64(safety.InexactFloat64()),
		ReorderPoint:   types.NewQuantityFromFloat64(reorderPoint.InexactFloat64()),
		SuggestedOrder: suggestedUnits,
		Level:          level,
	}
}
