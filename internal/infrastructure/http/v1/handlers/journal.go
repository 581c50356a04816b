package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/infrastructure/http/v1/dto"
)

// JournalHandler handles HTTP requests for the journal engine.
type JournalHandler struct {
	*BaseHandler
	engine   *journal.Engine
	replayer *journal.Replayer
	accounts *account.Service
}

// NewJournalHandler creates a journal handler.
func NewJournalHandler(base *BaseHandler, engine *journal.Engine, replayer *journal.Replayer, accounts *account.Service) *JournalHandler {
	return &JournalHandler{
		BaseHandler: base,
		engine:      engine,
		replayer:    replayer,
		accounts:    accounts,
	}
}

// PostEntry handles POST /journal/entries
func (h *JournalHandler) PostEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PostEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft(ctx, h.accounts.GetByCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.engine.Post(ctx, draft)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromEntry(entry))
}

// GetByFolio handles GET /journal/entries/:folio
func (h *JournalHandler) GetByFolio(c *gin.Context) {
	entry, err := h.engine.GetByFolio(c.Request.Context(), c.Param("folio"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntry(entry))
}

// List handles GET /journal/entries
func (h *JournalHandler) List(c *gin.Context) {
	filter := journal.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		entryType := journal.EntryType(typeStr)
		filter.Type = &entryType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := journal.Status(statusStr)
		filter.Status = &status
	}
	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}
	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	entries, err := h.engine.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntries(entries))
}

// Void handles POST /journal/entries/:id/void
func (h *JournalHandler) Void(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entry id format"))
		return
	}

	var req struct {
		Concept string `json:"concept"`
	}
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	reversal, err := h.engine.Void(c.Request.Context(), entryID, req.Concept)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntry(reversal))
}

// Replay handles POST /journal/replay
//
// Rebuilds every account balance from the entry log. Destructive to
// materialized balances but not to history; intended for recovery.
func (h *JournalHandler) Replay(c *gin.Context) {
	result, err := h.replayer.Replay(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entriesApplied": result.EntriesApplied,
		"entriesSkipped": result.EntriesSkipped,
		"accountsFinal":  result.AccountsFinal,
		"totalDebit":     int64(result.TotalDebit),
	})
}

// RegisterRoutes registers journal routes.
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/entries", h.PostEntry)
	rg.GET("/entries", h.List)
	rg.GET("/entries/:folio", h.GetByFolio)
	rg.POST("/entries/:id/void", h.Void)
	rg.POST("/replay", h.Replay)
}
