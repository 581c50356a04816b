package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/infrastructure/http/v1/dto"
)

// FulfillmentHandler handles HTTP requests for order fulfillment.
type FulfillmentHandler struct {
	*BaseHandler
	orchestrator *fulfillment.Orchestrator
	accounts     fulfillment.Accounts
}

// NewFulfillmentHandler creates a fulfillment handler. accounts carries the
// configured posting codes.
func NewFulfillmentHandler(base *BaseHandler, orchestrator *fulfillment.Orchestrator, accounts fulfillment.Accounts) *FulfillmentHandler {
	return &FulfillmentHandler{
		BaseHandler:  base,
		orchestrator: orchestrator,
		accounts:     accounts,
	}
}

// Fulfill handles POST /fulfillment
//
// A rejected attempt is a valid outcome, not a transport error: it returns
// 422 with the rejection state so the caller can distinguish "no stock" from
// "bad request".
func (h *FulfillmentHandler) Fulfill(c *gin.Context) {
	var req dto.FulfillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToOrder()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.orchestrator.Fulfill(c.Request.Context(), order, h.accounts)
	if err != nil {
		if result != nil && result.State == fulfillment.StateRejected {
			c.JSON(http.StatusUnprocessableEntity, dto.FromFulfillResult(result, order.SourceID))
			return
		}
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromFulfillResult(result, order.SourceID))
}

// Cancel handles POST /fulfillment/:sourceId/cancel
func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	sourceID, err := id.Parse(c.Param("sourceId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sourceId format"))
		return
	}

	var req dto.CancelRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	if err := h.orchestrator.Cancel(c.Request.Context(), sourceID, req.Reason); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "fulfillment cancelled")
}

// RegisterRoutes registers fulfillment routes.
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Fulfill)
	rg.POST("/:sourceId/cancel", h.Cancel)
}
