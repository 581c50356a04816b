package dto

import (
	"context"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/catalogs/account"
)

// EntryMovementRequest is one leg of a posting request. The account may be
// referenced by id or by chart code; id wins when both are present.
type EntryMovementRequest struct {
	AccountID   string `json:"accountId,omitempty"`
	AccountCode string `json:"accountCode,omitempty"`
	Side        string `json:"side" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
}

// PostEntryRequest is the payload for posting a manual journal entry.
type PostEntryRequest struct {
	Date    *time.Time `json:"date,omitempty"`
	Concept string     `json:"concept" binding:"required"`

	Movements []EntryMovementRequest `json:"movements" binding:"required"`

	SourceType  string `json:"sourceType,omitempty"`
	SourceID    string `json:"sourceId,omitempty"`
	SourceFolio string `json:"sourceFolio,omitempty"`
}

// ToDraft converts the request to an engine draft, resolving any
// code-addressed movements through resolve.
func (r *PostEntryRequest) ToDraft(ctx context.Context, resolve func(ctx context.Context, code string) (*account.LedgerAccount, error)) (journal.Draft, error) {
	draft := journal.Draft{
		Concept:     r.Concept,
		SourceType:  r.SourceType,
		SourceFolio: r.SourceFolio,
	}
	if r.Date != nil {
		draft.Date = *r.Date
	}
	if r.SourceID != "" {
		sourceID, err := id.Parse(r.SourceID)
		if err != nil {
			return journal.Draft{}, apperror.NewValidation("invalid sourceId format")
		}
		draft.SourceID = sourceID
	}

	draft.Movements = make([]journal.Movement, 0, len(r.Movements))
	for i, m := range r.Movements {
		movement := journal.Movement{
			Side:   account.Side(m.Side),
			Amount: types.MinorUnits(m.Amount),
		}

		switch {
		case m.AccountID != "":
			accountID, err := id.Parse(m.AccountID)
			if err != nil {
				return journal.Draft{}, apperror.NewValidation("invalid accountId format").
					WithDetail("index", i)
			}
			movement.AccountID = accountID
		case m.AccountCode != "":
			acc, err := resolve(ctx, m.AccountCode)
			if err != nil {
				return journal.Draft{}, err
			}
			movement.AccountID = acc.ID
			movement.AccountCode = acc.Code
		default:
			return journal.Draft{}, apperror.NewValidation("movement requires accountId or accountCode").
				WithDetail("index", i)
		}

		draft.Movements = append(draft.Movements, movement)
	}

	return draft, nil
}

// EntryMovementResponse is the wire shape of one entry leg.
type EntryMovementResponse struct {
	AccountID   string `json:"accountId"`
	AccountCode string `json:"accountCode"`
	Side        string `json:"side"`
	Amount      int64  `json:"amount"`
}

// EntryResponse is the wire shape of a journal entry.
type EntryResponse struct {
	ID      string    `json:"id"`
	Folio   string    `json:"folio"`
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Concept string    `json:"concept"`

	Movements []EntryMovementResponse `json:"movements"`

	TotalDebit  int64 `json:"totalDebit"`
	TotalCredit int64 `json:"totalCredit"`

	Status string `json:"status"`

	SourceType  string `json:"sourceType,omitempty"`
	SourceID    string `json:"sourceId,omitempty"`
	SourceFolio string `json:"sourceFolio,omitempty"`
	AutoPosted  bool   `json:"autoPosted"`

	VoidedBy *string `json:"voidedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// FromEntry maps a journal entry to the wire shape.
func FromEntry(e *journal.Entry) EntryResponse {
	resp := EntryResponse{
		ID:          e.ID.String(),
		Folio:       e.Folio,
		Type:        string(e.Type),
		Date:        e.Date,
		Concept:     e.Concept,
		TotalDebit:  int64(e.TotalDebit),
		TotalCredit: int64(e.TotalCredit),
		Status:      string(e.Status),
		SourceType:  e.SourceType,
		SourceFolio: e.SourceFolio,
		AutoPosted:  e.AutoPosted,
		CreatedAt:   e.CreatedAt,
	}
	if !id.IsNil(e.SourceID) {
		resp.SourceID = e.SourceID.String()
	}
	if e.VoidedBy != nil {
		voidedBy := e.VoidedBy.String()
		resp.VoidedBy = &voidedBy
	}

	resp.Movements = make([]EntryMovementResponse, len(e.Movements))
	for i, m := range e.Movements {
		resp.Movements[i] = EntryMovementResponse{
			AccountID:   m.AccountID.String(),
			AccountCode: m.AccountCode,
			Side:        string(m.Side),
			Amount:      int64(m.Amount),
		}
	}
	return resp
}

// EntryListResponse wraps a page of entries.
type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
}

// FromEntries maps a slice of entries.
func FromEntries(entries []*journal.Entry) EntryListResponse {
	items := make([]EntryResponse, len(entries))
	for i, e := range entries {
		items[i] = FromEntry(e)
	}
	return EntryListResponse{Items: items}
}
