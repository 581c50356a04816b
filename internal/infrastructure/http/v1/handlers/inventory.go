package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/cache"
	"kardex/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles HTTP requests for the stock ledger.
type InventoryHandler struct {
	*BaseHandler
	service      *ledger.Service
	repo         ledger.Repository
	availability *cache.AvailabilityCache
}

// NewInventoryHandler creates a stock ledger handler. availability may be nil.
func NewInventoryHandler(base *BaseHandler, service *ledger.Service, repo ledger.Repository, availability *cache.AvailabilityCache) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler:  base,
		service:      service,
		repo:         repo,
		availability: availability,
	}
}

// RecordMovement handles POST /inventory/movements
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := req.ToMovement()
	if err != nil {
		h.Error(c, err)
		return
	}

	lineID, err := h.service.RecordMovement(c.Request.Context(), movement)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, lineID.String())
}

// RecordBatch handles POST /inventory/movements/batch
func (h *InventoryHandler) RecordBatch(c *gin.Context) {
	var reqs []dto.MovementRequest
	if !h.BindJSON(c, &reqs) {
		return
	}
	if len(reqs) == 0 {
		h.Error(c, apperror.NewValidation("batch requires at least one movement"))
		return
	}

	movements := make([]ledger.Movement, 0, len(reqs))
	for i := range reqs {
		m, err := reqs[i].ToMovement()
		if err != nil {
			h.Error(c, err)
			return
		}
		movements = append(movements, m)
	}

	if err := h.service.RecordMovements(c.Request.Context(), movements); err != nil {
		h.Error(c, err)
		return
	}

	response := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		response[i] = dto.FromMovement(m)
	}
	c.JSON(http.StatusCreated, dto.MovementListResponse{
		Items:      response,
		TotalCount: len(response),
	})
}

// GetAvailability handles GET /inventory/availability/:productId/:warehouseId
//
// Read-through: the cache answers when warm; misses fold the ledger and warm
// the cache. Invariant checks never take this path.
func (h *InventoryHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}
	warehouseID, err := id.Parse(c.Param("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	if h.availability != nil {
		if qty, ok := h.availability.Get(ctx, productID, warehouseID); ok {
			c.JSON(http.StatusOK, gin.H{
				"productId":   productID.String(),
				"warehouseId": warehouseID.String(),
				"quantity":    qty,
				"cached":      true,
			})
			return
		}
	}

	qty, err := h.service.QuantityOnHand(ctx, productID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.availability != nil {
		h.availability.Set(ctx, productID, warehouseID, qty)
	}

	c.JSON(http.StatusOK, gin.H{
		"productId":   productID.String(),
		"warehouseId": warehouseID.String(),
		"quantity":    qty,
		"cached":      false,
	})
}

// GetLots handles GET /inventory/lots/:productId/:warehouseId
func (h *InventoryHandler) GetLots(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}
	warehouseID, err := id.Parse(c.Param("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	order := ledger.OrderReceived
	if c.Query("order") == "expiry" {
		order = ledger.OrderExpiry
	}

	lots, err := h.service.Lots(c.Request.Context(), productID, warehouseID, order)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LotResponse, len(lots))
	for i, lot := range lots {
		items[i] = dto.FromLotStock(lot)
	}
	c.JSON(http.StatusOK, dto.LotListResponse{Items: items})
}

// GetMovements handles GET /inventory/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	productIDStr := c.Query("productId")
	if productIDStr == "" {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}
	productID, err := id.Parse(productIDStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	filter := ledger.HistoryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if whStr := c.Query("warehouseId"); whStr != "" {
		parsed, err := id.Parse(whStr)
		if err == nil {
			filter.WarehouseID = &parsed
		}
	}

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := ledger.MovementKind(kindStr)
		if !kind.Valid() {
			h.Error(c, apperror.NewValidation("unknown movement kind").WithDetail("kind", kindStr))
			return
		}
		filter.Kind = &kind
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

	movements, err := h.repo.MovementsForProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		response[i] = dto.FromMovement(m)
	}
	c.JSON(http.StatusOK, dto.MovementListResponse{
		Items:      response,
		TotalCount: len(response),
	})
}

// GetTurnover handles GET /inventory/turnover/:productId/:warehouseId
func (h *InventoryHandler) GetTurnover(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}
	warehouseID, err := id.Parse(c.Param("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	fromDate, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}
	toDate, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	turnover, err := h.service.Turnover(c.Request.Context(), productID, warehouseID, fromDate, toDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTurnover(turnover))
}

// RegisterRoutes registers stock ledger routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/movements", h.RecordMovement)
	rg.POST("/movements/batch", h.RecordBatch)
	rg.GET("/movements", h.GetMovements)
	rg.GET("/availability/:productId/:warehouseId", h.GetAvailability)
	rg.GET("/lots/:productId/:warehouseId", h.GetLots)
	rg.GET("/turnover/:productId/:warehouseId", h.GetTurnover)
}
