// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/domain/inventory/forecast"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/cache"
	"kardex/internal/infrastructure/http/v1/handlers"
	"kardex/internal/infrastructure/http/v1/middleware"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool for health checks; nil when running on the in-memory store
	Pool *postgres.Pool

	// Stock ledger
	Ledger     *ledger.Service
	LedgerRepo ledger.Repository

	// Journal engine and recovery
	Journal  *journal.Engine
	Replayer *journal.Replayer

	// Fulfillment
	Orchestrator       *fulfillment.Orchestrator
	FulfillmentAccount fulfillment.Accounts

	// Forecasting
	Forecaster *forecast.Forecaster

	// Catalogs
	Products   *product.Service
	Warehouses *warehouse.Service
	Accounts   *account.Service

	// Availability is the optional read-path cache
	Availability *cache.AvailabilityCache
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	baseHandler := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		catalogs := api.Group("/catalogs")
		{
			handlers.NewProductHandler(baseHandler, cfg.Products).
				RegisterRoutes(catalogs.Group("/products"))
			handlers.NewWarehouseHandler(baseHandler, cfg.Warehouses).
				RegisterRoutes(catalogs.Group("/warehouses"))
			handlers.NewAccountHandler(baseHandler, cfg.Accounts).
				RegisterRoutes(catalogs.Group("/accounts"))
		}

		handlers.NewInventoryHandler(baseHandler, cfg.Ledger, cfg.LedgerRepo, cfg.Availability).
			RegisterRoutes(api.Group("/inventory"))

		handlers.NewJournalHandler(baseHandler, cfg.Journal, cfg.Replayer, cfg.Accounts).
			RegisterRoutes(api.Group("/journal"))

		handlers.NewFulfillmentHandler(baseHandler, cfg.Orchestrator, cfg.FulfillmentAccount).
			RegisterRoutes(api.Group("/fulfillment"))

		handlers.NewForecastHandler(baseHandler, cfg.Forecaster, cfg.Products).
			RegisterRoutes(api.Group("/forecast"))
	}

	return router
}
