package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
	"kardex/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a product catalog handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalogs/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID.String())
}

// GetByID handles GET /catalogs/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(p))
}

// List handles GET /catalogs/products
func (h *ProductHandler) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") != "false"

	products, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		items[i] = dto.FromProduct(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateReorder handles PUT /catalogs/products/:id/reorder
func (h *ProductHandler) UpdateReorder(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateReorderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateReorderParameters(c.Request.Context(), productID,
		req.ReorderPoint, req.MinStock, req.MaxStock, req.LeadTimeDays)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(p))
}

// RegisterRoutes registers product catalog routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id/reorder", h.UpdateReorder)
}

// WarehouseHandler handles HTTP requests for the warehouse catalog.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a warehouse catalog handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalogs/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToWarehouse()
	if err := h.service.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w.ID.String())
}

// GetByID handles GET /catalogs/warehouses/:id
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	warehouseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	w, err := h.service.GetByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromWarehouse(w))
}

// List handles GET /catalogs/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") != "false"

	warehouses, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.WarehouseResponse, len(warehouses))
	for i, w := range warehouses {
		items[i] = dto.FromWarehouse(w)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetDefault handles POST /catalogs/warehouses/:id/default
func (h *WarehouseHandler) SetDefault(c *gin.Context) {
	warehouseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.SetDefault(c.Request.Context(), warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "default warehouse updated")
}

// RegisterRoutes registers warehouse catalog routes.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/default", h.SetDefault)
}

// AccountHandler handles HTTP requests for the chart of accounts.
type AccountHandler struct {
	*BaseHandler
	service *account.Service
}

// NewAccountHandler creates a chart of accounts handler.
func NewAccountHandler(base *BaseHandler, service *account.Service) *AccountHandler {
	return &AccountHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalogs/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a := req.ToAccount()
	if err := h.service.Create(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, a.ID.String())
}

// GetByID handles GET /catalogs/accounts/:id
func (h *AccountHandler) GetByID(c *gin.Context) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAccount(a))
}

// GetByCode handles GET /catalogs/accounts/code/:code
func (h *AccountHandler) GetByCode(c *gin.Context) {
	a, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAccount(a))
}

// List handles GET /catalogs/accounts
func (h *AccountHandler) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") != "false"

	accounts, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, len(accounts))
	for i, a := range accounts {
		items[i] = dto.FromAccount(a)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Deactivate handles POST /catalogs/accounts/:id/deactivate
func (h *AccountHandler) Deactivate(c *gin.Context) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), accountID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "account deactivated")
}

// RegisterRoutes registers chart of accounts routes.
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/code/:code", h.GetByCode)
	rg.POST("/:id/deactivate", h.Deactivate)
}
