package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/inventory/forecast"
	"kardex/internal/infrastructure/http/v1/dto"
)

// ForecastHandler handles HTTP requests for demand forecasting.
type ForecastHandler struct {
	*BaseHandler
	forecaster *forecast.Forecaster
	products   *product.Service
}

// NewForecastHandler creates a forecast handler.
func NewForecastHandler(base *BaseHandler, forecaster *forecast.Forecaster, products *product.Service) *ForecastHandler {
	return &ForecastHandler{
		BaseHandler: base,
		forecaster:  forecaster,
		products:    products,
	}
}

// GetReplenishment handles GET /forecast/replenishment/:productId
func (h *ForecastHandler) GetReplenishment(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	windowDays := h.ParseIntQuery(c, "windowDays", 0)

	replenishment, err := h.forecaster.ComputeReplenishment(ctx, p, windowDays)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReplenishment(replenishment))
}

// ListReplenishments handles GET /forecast/replenishment
//
// Evaluates every active product; intended for the purchasing review screen.
func (h *ForecastHandler) ListReplenishments(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.products.List(ctx, true)
	if err != nil {
		h.Error(c, err)
		return
	}

	windowDays := h.ParseIntQuery(c, "windowDays", 0)
	onlyActionable := c.Query("onlyActionable") == "true"

	items := make([]dto.ReplenishmentResponse, 0, len(products))
	for _, p := range products {
		replenishment, err := h.forecaster.ComputeReplenishment(ctx, p, windowDays)
		if err != nil {
			h.Error(c, err)
			return
		}
		if onlyActionable && replenishment.Level == forecast.LevelSafe {
			continue
		}
		items = append(items, dto.FromReplenishment(replenishment))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RegisterRoutes registers forecast routes.
func (h *ForecastHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/replenishment", h.ListReplenishments)
	rg.GET("/replenishment/:productId", h.GetReplenishment)
}
