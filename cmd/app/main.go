package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradequest/tradequest/internal/config"
	"github.com/tradequest/tradequest/internal/contest"
	"github.com/tradequest/tradequest/internal/database"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/market"
	"github.com/tradequest/tradequest/internal/profile"
	"github.com/tradequest/tradequest/internal/server"
	"github.com/tradequest/tradequest/internal/store"
	"github.com/tradequest/tradequest/internal/store/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	st, dbPool, err := buildStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	bus := event.NewResilientPublisher(event.NewMemoryBus(), event.ResilientConfig{
		MaxRetries: 3,
		RetryDelay: time.Second,
	})
	registerEventLogging(bus)

	profileService := profile.NewService(st, bus)
	contestService := contest.NewService(st, bus)

	var primary market.Source
	if cfg.MarketDataURL != "" {
		primary = market.NewHTTPSource(cfg.MarketDataURL)
	}
	marketSource := market.NewCompositeSource(primary)

	var pool database.Pool
	if dbPool != nil {
		pool = dbPool
	}
	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, pool, profileService, contestService, marketSource)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

// buildStore selects the persistence layer. Postgres runs migrations on
// startup; the in-memory store needs no setup and loses state on restart.
func buildStore(cfg *config.Config) (store.Store, *pgxpool.Pool, error) {
	if cfg.StoreBackend != "postgres" {
		slog.Info("Using in-memory store")
		return store.NewMemory(), nil, nil
	}

	connString := cfg.GetDBConnString()
	if err := database.Migrate(connString); err != nil {
		return nil, nil, err
	}

	dbPool, err := database.NewPool(connString, cfg.DBMaxConns, cfg.DBMaxIdle, cfg.DBMaxLife)
	if err != nil {
		return nil, nil, err
	}

	return postgres.New(dbPool), dbPool, nil
}

// registerEventLogging subscribes a structured-log observer to every event
// type so the audit trail exists even without external consumers.
func registerEventLogging(bus event.Bus) {
	logEvent := func(ctx context.Context, e event.Event) error {
		slog.Info("Event published", "type", string(e.Type), "payload", e.Payload)
		return nil
	}

	bus.Subscribe(event.TradeSettled, logEvent)
	bus.Subscribe(event.AchievementUnlocked, logEvent)
	bus.Subscribe(event.ContestCreated, logEvent)
	bus.Subscribe(event.ContestFinished, logEvent)
}
