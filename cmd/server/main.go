// Package main is the entry point for the kardex API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kardex/internal/config"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/domain/accounting/period"
	"kardex/internal/domain/accounting/rules"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/domain/inventory/allocation"
	"kardex/internal/domain/inventory/forecast"
	"kardex/internal/domain/inventory/ledger"
	"kardex/internal/infrastructure/cache"
	v1 "kardex/internal/infrastructure/http/v1"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storage/postgres/catalog_repo"
	"kardex/internal/infrastructure/storage/postgres/inventory_repo"
	"kardex/internal/infrastructure/storage/postgres/journal_repo"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting kardex server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolCfg.MinConns = cfg.Database.MinConns
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	ledgerRepo := inventory_repo.NewLedgerRepo(txManager)
	journalRepo := journal_repo.NewJournalRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	accountRepo := catalog_repo.NewAccountRepo(txManager)

	numeratorService := numerator.New(postgres.NewSequenceStore(txManager))

	// --- Availability cache (optional) ---
	var availability *cache.AvailabilityCache
	if cfg.Redis.Addr != "" {
		client := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unavailable, availability cache disabled", "error", err)
		} else {
			availability = cache.New(client, cfg.Redis.TTL)
			log.Infow("availability cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	// --- Domain services ---
	productService := product.NewService(productRepo, numeratorService)
	warehouseService := warehouse.NewService(warehouseRepo, numeratorService, txManager)
	accountService := account.NewService(accountRepo)

	var invalidator ledger.AvailabilityInvalidator
	if availability != nil {
		invalidator = availability
	}
	stockLedger := ledger.NewService(ledgerRepo, productRepo, txManager, invalidator)

	selector := allocation.NewSelector(stockLedger)
	forecaster := forecast.New(stockLedger, cfg.Forecast)

	var periodPolicy period.Policy = period.NewOpenPolicy()
	if !cfg.Period.ClosedUntil.IsZero() {
		periodPolicy = period.NewStrictPolicy(cfg.Period.ClosedUntil)
		log.Infow("period policy active", "closed_until", cfg.Period.ClosedUntil)
	}

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	journalEngine := journal.NewEngine(journalRepo, accountRepo, numeratorService, periodPolicy, txManager, auditService)
	replayer := journal.NewReplayer(journalRepo, accountRepo, txManager)

	rulesEngine, err := rules.NewEngine(cfg.Rules.Rules, cfg.Rules.Fallback)
	if err != nil {
		log.Fatalw("failed to compile posting rules", "error", err)
	}
	log.Infow("posting rules compiled", "count", len(cfg.Rules.Rules), "fallback", cfg.Rules.Fallback)

	orchestrator := fulfillment.NewOrchestrator(selector, stockLedger, journalEngine, accountRepo, rulesEngine, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		Pool:               pool,
		Ledger:             stockLedger,
		LedgerRepo:         ledgerRepo,
		Journal:            journalEngine,
		Replayer:           replayer,
		Orchestrator:       orchestrator,
		FulfillmentAccount: cfg.Accounts,
		Forecaster:         forecaster,
		Products:           productService,
		Warehouses:         warehouseService,
		Accounts:           accountService,
		Availability:       availability,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
