package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quartzlab/tradepost/internal/catalog"
	"github.com/quartzlab/tradepost/internal/config"
	"github.com/quartzlab/tradepost/internal/database"
	"github.com/quartzlab/tradepost/internal/database/postgres"
	"github.com/quartzlab/tradepost/internal/economy"
	"github.com/quartzlab/tradepost/internal/equip"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/lootbox"
	"github.com/quartzlab/tradepost/internal/metrics"
	"github.com/quartzlab/tradepost/internal/scheduler"
	"github.com/quartzlab/tradepost/internal/server"
	"github.com/quartzlab/tradepost/internal/trade"
	"github.com/quartzlab/tradepost/internal/wallet"
	"github.com/quartzlab/tradepost/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)

	if cfg.Environment == "prod" || cfg.Environment == "production" {
		warnings, err := config.ValidateEnvWithWarnings()
		if err != nil {
			slog.Error("Environment validation failed", "error", err)
			os.Exit(1)
		}
		for _, warning := range warnings {
			slog.Warn(warning)
		}
	}

	connString := cfg.GetDBConnString()
	if err := database.Migrate(connString); err != nil {
		slog.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewPool(connString, cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Event bus and resilient publisher
	bus := event.NewMemoryBus()
	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		MaxRetries:     cfg.EventMaxRetries,
		RetryDelay:     cfg.EventRetryDelay,
		DeadLetterPath: cfg.EventDeadLetterPath,
	})

	metrics.NewEventMetricsCollector().Register(publisher)

	// Repositories
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	inventoryRepo := postgres.NewInventoryRepository(dbPool)
	walletRepo := postgres.NewWalletRepository(dbPool)
	economyRepo := postgres.NewEconomyRepository(dbPool)
	lootboxRepo := postgres.NewLootboxRepository(dbPool)
	tradeRepo := postgres.NewTradeRepository(dbPool)
	equipRepo := postgres.NewEquipRepository(dbPool)

	// Services
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		slog.Error("Failed to create catalog service", "error", err)
		os.Exit(1)
	}
	inventoryService := inventory.NewService(inventoryRepo, catalogService, publisher)
	walletService := wallet.NewService(walletRepo)
	economyService := economy.NewService(economyRepo, catalogService, publisher)
	lootboxService := lootbox.NewService(lootboxRepo, publisher)
	tradeService := trade.NewService(tradeRepo, publisher, cfg.TradeTTL)
	equipService := equip.NewService(equipRepo, catalogService, cfg.BadgeLimit)

	// Trade expiry: eager per-trade timers plus a periodic backstop sweep
	expiryWorker := worker.NewTradeExpiryWorker(tradeService, trade.ExpireSweepLimit)
	expiryWorker.Subscribe(publisher)
	expiryWorker.Start()

	pool := worker.NewPool(2, 16)
	pool.Start()

	sched := scheduler.New(pool)
	sched.Schedule(cfg.TradeSweepInterval, &worker.TradeExpiryJob{
		Service: tradeService,
		Limit:   trade.ExpireSweepLimit,
	})

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, dbPool, server.Services{
		Catalog:   catalogService,
		Inventory: inventoryService,
		Wallet:    walletService,
		Economy:   economyService,
		Lootbox:   lootboxService,
		Trade:     tradeService,
		Equip:     equipService,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	sched.Stop()
	pool.Stop()

	if err := expiryWorker.Shutdown(ctx); err != nil {
		slog.Warn("Trade expiry worker shutdown incomplete", "error", err)
	}
	if err := publisher.Shutdown(ctx); err != nil {
		slog.Warn("Event publisher shutdown incomplete", "error", err)
	}

	slog.Info("Shutdown complete")
}
