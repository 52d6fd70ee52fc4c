package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Omarkam3l/Kathir-final/internal/config"
	"github.com/Omarkam3l/Kathir-final/internal/logging"
	"github.com/Omarkam3l/Kathir-final/internal/repository"
	"github.com/Omarkam3l/Kathir-final/internal/server"
	"github.com/Omarkam3l/Kathir-final/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("newPool: %w", err)
	}
	defer pool.Close()

	catalogRepo := repository.NewCatalog(pool)
	favoriteRepo := repository.NewFavorite(pool)
	cartRepo := repository.NewCart(pool)

	resolver := service.NewResolver(catalogRepo, favoriteRepo)
	allocator := service.NewAllocator(resolver)
	ledger := service.NewLedger(catalogRepo, cartRepo)
	search := service.NewSearch(catalogRepo, favoriteRepo)

	srv, err := server.New(cfg, logger, allocator, ledger, search)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	logger.Info("starting",
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("srv.Run: %w", err)
	}

	logger.Info("stopped")
	return nil
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pool, nil
}
