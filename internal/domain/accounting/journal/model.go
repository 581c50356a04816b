// Package journal provides balanced double-entry journal posting.
package journal

import (
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/account"
)

// EntryType is the ledger book label derived from the source event.
type EntryType string

const (
	TypeIngresos EntryType = "Ingresos"
	TypeEgresos  EntryType = "Egresos"
	TypeDiario   EntryType = "Diario"
)

// Status of a journal entry. Entries are immutable once posted; voiding
// posts a reversing entry and marks the original.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
	StatusVoid   Status = "void"
)

// Movement is one debit or credit leg of an entry.
type Movement struct {
	AccountID   id.ID            `db:"account_id" json:"accountId"`
	AccountCode string           `db:"account_code" json:"accountCode"`
	Side        account.Side     `db:"side" json:"side"`
	Amount      types.MinorUnits `db:"amount" json:"amount"`
}

// Entry is a balanced double-entry journal record (póliza).
type Entry struct {
	entity.BaseEntity

	// Folio is the unique sequential reference: POL-{year}{month}-{sequence}
	Folio string `db:"folio" json:"folio"`

	Type    EntryType `db:"type" json:"type"`
	Date    time.Time `db:"date" json:"date"`
	Concept string    `db:"concept" json:"concept"`

	Movements []Movement `db:"-" json:"movements"`

	TotalDebit  types.MinorUnits `db:"total_debit" json:"totalDebit"`
	TotalCredit types.MinorUnits `db:"total_credit" json:"totalCredit"`

	Status Status `db:"status" json:"status"`

	// Source tracking for automatic posting
	SourceType  string `db:"source_type" json:"sourceType"`
	SourceID    id.ID  `db:"source_id" json:"sourceId"`
	SourceFolio string `db:"source_folio" json:"sourceFolio"`
	AutoPosted  bool   `db:"auto_posted" json:"autoPosted"`

	// VoidedBy references the reversing entry when status is void
	VoidedBy *id.ID `db:"voided_by" json:"voidedBy,omitempty"`
}

// Totals sums the debit and credit legs.
func Totals(movements []Movement) (debit, credit types.MinorUnits) {
	for i := range movements {
		if movements[i].Side == account.SideDebit {
			debit += movements[i].Amount
		} else {
			credit += movements[i].Amount
		}
	}
	return debit, credit
}

// ClassifyEntryType maps the source event type to the book label.
// The label never affects balance logic.
func ClassifyEntryType(sourceType string) EntryType {
	switch sourceType {
	case "salesOrder", "salesInvoice", "delivery", "posTicket":
		return TypeIngresos
	case "purchaseOrder", "goodsReceipt", "accountPayable":
		return TypeEgresos
	default:
		return TypeDiario
	}
}
