// Package main is the entry point for the Wheelhouse options trading
// tracker. It wires the two databases, the repositories and services, the
// maintenance scheduler, and the HTTP server, then blocks until a
// shutdown signal arrives.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/backup"
	"github.com/greenmangroup/wheelhouse/internal/clients/alphavantage"
	"github.com/greenmangroup/wheelhouse/internal/config"
	"github.com/greenmangroup/wheelhouse/internal/database"
	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
	"github.com/greenmangroup/wheelhouse/internal/modules/bankroll"
	"github.com/greenmangroup/wheelhouse/internal/modules/cash_flows"
	"github.com/greenmangroup/wheelhouse/internal/modules/commissions"
	"github.com/greenmangroup/wheelhouse/internal/modules/ledger"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	"github.com/greenmangroup/wheelhouse/internal/scheduler"
	"github.com/greenmangroup/wheelhouse/internal/server"
	"github.com/greenmangroup/wheelhouse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Msg("Starting Wheelhouse")

	// Ledger database: maximum durability, holds the books.
	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerDBPath(),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	// Cache database: disposable, holds rebuildable snapshots only.
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{ledgerDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	bus := events.NewBus(log)

	// Repositories.
	accountsRepo := accounts.NewRepository(ledgerDB.Conn(), log)
	tickersRepo := tickers.NewRepository(ledgerDB.Conn(), log)
	commissionsRepo := commissions.NewRepository(ledgerDB.Conn(), log)
	cashFlowsRepo := cash_flows.NewRepository(ledgerDB.Conn(), log)
	tradesRepo := trades.NewRepository(ledgerDB.Conn(), log)
	ledgerRepo := ledger.NewRepository(ledgerDB.Conn(), log)

	// Services. The ledger service doubles as the rebuilder every trade
	// mutation calls synchronously.
	alphaVantage := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
	tickersService := tickers.NewService(tickersRepo, alphaVantage, log)
	snapshotCache := ledger.NewSnapshotCache(cacheDB.Conn(), cfg.SnapshotCacheTTL, log)
	ledgerService := ledger.NewService(ledgerRepo, tradesRepo, tickersRepo, snapshotCache, bus, log)
	tradesService := trades.NewService(
		tradesRepo,
		accountsRepo,
		tickersRepo,
		commissionsRepo,
		cashFlowsRepo,
		ledgerService,
		bus,
		log,
	)
	bankrollService := bankroll.NewService(accountsRepo, cashFlowsRepo, tradesRepo, log)

	// Maintenance scheduler. Jobs never write ledger entries; rebuilds run
	// synchronously inside trade mutations.
	sched := scheduler.New(log)
	integrityJob := scheduler.NewIntegrityCheckJob(log, ledgerDB, cacheDB)
	mustAddJob(log, sched, "@hourly", scheduler.NewWALCheckpointJob(log, ledgerDB, cacheDB))
	mustAddJob(log, sched, "0 30 3 * * *", integrityJob)

	// Check both databases before taking traffic.
	if err := sched.RunNow(integrityJob); err != nil {
		log.Fatal().Err(err).Msg("Database integrity check failed at startup")
	}

	if cfg.Backup != nil && cfg.Backup.Enabled {
		backupService, err := backup.New(context.Background(), cfg.Backup, ledgerDB, bus, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup service")
		}
		mustAddJob(log, sched, "0 0 4 * * *", scheduler.NewBackupJob(log, backupService))
		log.Info().Str("bucket", cfg.Backup.S3Bucket).Msg("Scheduled backups enabled")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:             log,
		Cfg:             cfg,
		LedgerDB:        ledgerDB,
		CacheDB:         cacheDB,
		Bus:             bus,
		AccountsRepo:    accountsRepo,
		TickersRepo:     tickersRepo,
		TickersService:  tickersService,
		CashFlowsRepo:   cashFlowsRepo,
		CommissionsRepo: commissionsRepo,
		TradesService:   tradesService,
		LedgerService:   ledgerService,
		BankrollService: bankrollService,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Wheelhouse stopped")
}

func mustAddJob(log zerolog.Logger, sched *scheduler.Scheduler, schedule string, job scheduler.Job) {
	if err := sched.AddJob(schedule, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
	}
}
