// Package fulfillment orchestrates order fulfillment across the stock ledger
// and the journal engine: allocation, stock consumption and accounting post
// either all succeed or leave no trace.
package fulfillment

import (
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/inventory/allocation"
	"kardex/internal/domain/inventory/ledger"
)

// State of a fulfillment attempt. Terminal states are Committed and Rejected.
type State string

const (
	StateRequested State = "requested"
	StateAllocated State = "allocated"
	StatePosted    State = "posted"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
)

// LineRequest is one requested product line.
type LineRequest struct {
	ProductID   id.ID            `json:"productId"`
	WarehouseID id.ID            `json:"warehouseId"`
	Quantity    types.Quantity   `json:"quantity"`
	UnitPrice   types.MinorUnits `json:"unitPrice"`
}

// Order is a fulfillment request for a business document.
type Order struct {
	// SourceType classifies the originating document (salesOrder, delivery)
	SourceType  string `json:"sourceType"`
	SourceID    id.ID  `json:"sourceId"`
	SourceFolio string `json:"sourceFolio"`

	Concept string    `json:"concept"`
	Date    time.Time `json:"date"`

	Lines []LineRequest `json:"lines"`

	// Policy selects lot consumption order; defaults to FIFO
	Policy allocation.Policy `json:"policy"`

	// Attributes feed the account-selection rules (payment method, channel)
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Accounts names the account codes the orchestrator posts against.
type Accounts struct {
	InventoryCode  string `json:"inventoryCode" mapstructure:"inventory"`
	COGSCode       string `json:"cogsCode" mapstructure:"cogs"`
	ReceivableCode string `json:"receivableCode" mapstructure:"receivable"`
	RevenueCode    string `json:"revenueCode" mapstructure:"revenue"`
}

// Result is the outcome of a fulfillment attempt. On rejection only State
// and Reason are set; nothing was written.
type Result struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`

	Plans     []*allocation.Plan `json:"plans,omitempty"`
	Movements []ledger.Movement  `json:"movements,omitempty"`
	Entry     *journal.Entry     `json:"entry,omitempty"`

	COGS    types.MinorUnits `json:"cogs"`
	Revenue types.MinorUnits `json:"revenue"`
}
