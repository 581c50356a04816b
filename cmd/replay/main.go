// Package main rebuilds account balances by replaying the journal log.
//
// Run against a quiesced database: replay resets every balance to zero and
// reapplies entries in posting order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kardex/internal/config"
	"kardex/internal/domain/accounting/journal"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storage/postgres/catalog_repo"
	"kardex/internal/infrastructure/storage/postgres/journal_repo"
	"kardex/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "replay transaction timeout")
	dryRun := flag.Bool("dry-run", false, "report entry counts without touching balances")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(logger.WithLogger(context.Background(), log), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	journalRepo := journal_repo.NewJournalRepo(txManager)
	accountRepo := catalog_repo.NewAccountRepo(txManager)

	if *dryRun {
		entries, err := journalRepo.ListChronological(ctx)
		if err != nil {
			log.Fatalw("failed to read journal", "error", err)
		}
		posted := 0
		for _, e := range entries {
			if e.Status != journal.StatusDraft {
				posted++
			}
		}
		fmt.Printf("journal entries: %d total, %d would apply\n", len(entries), posted)
		return
	}

	log.Info("replaying journal...")
	start := time.Now()

	result, err := journal.NewReplayer(journalRepo, accountRepo, txManager).Replay(ctx)
	if err != nil {
		log.Fatalw("replay failed", "error", err)
	}

	log.Infow("replay complete",
		"entries_applied", result.EntriesApplied,
		"entries_skipped", result.EntriesSkipped,
		"accounts", result.AccountsFinal,
		"elapsed", time.Since(start).String(),
	)
	fmt.Printf("applied %d entries across %d accounts (skipped %d drafts)\n",
		result.EntriesApplied, result.AccountsFinal, result.EntriesSkipped)
}
