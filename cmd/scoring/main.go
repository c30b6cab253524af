package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hidroplan/rhnr-scoring/internal/adapter/hidro"
	httpadapter "github.com/hidroplan/rhnr-scoring/internal/adapter/http"
	"github.com/hidroplan/rhnr-scoring/internal/adapter/postgres"
	"github.com/hidroplan/rhnr-scoring/internal/adapter/store"
	"github.com/hidroplan/rhnr-scoring/internal/classify"
	"github.com/hidroplan/rhnr-scoring/internal/config"
	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/observability"
	"github.com/hidroplan/rhnr-scoring/internal/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	auxiliary, err := postgres.NewReader(cfg.Cplar, logger)
	if err != nil {
		logger.Error("auxiliary database unavailable", "error", err)
		os.Exit(1)
	}
	warehouse, err := hidro.NewReader(cfg.Hidro, logger)
	if err != nil {
		logger.Error("warehouse unavailable", "error", err)
		os.Exit(1)
	}
	results, err := store.Open(cfg.ResultsPath)
	if err != nil {
		logger.Error("results store unavailable", "error", err)
		os.Exit(1)
	}

	set := criteria.NewSet(criteria.Deps{
		Topology:               auxiliary,
		Geo:                    auxiliary,
		Series:                 warehouse,
		Scenarios:              auxiliary,
		Logger:                 logger,
		SeriesFailureThreshold: cfg.SeriesFailureThreshold,
	})
	registry := criteria.NewRegistry(set)
	engine := scoring.New(registry, domain.Scenario(cfg.Scenario), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, engine, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the scoring pipeline once; the server stays up for scraping until
	// the process is signaled.
	go func() {
		if err := run(ctx, cfg, logger, registry, engine, warehouse, results, metrics); err != nil {
			logger.Error("scoring run failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := auxiliary.Close(); err != nil {
		logger.Error("auxiliary database close error", "error", err)
	}
	if err := warehouse.Close(); err != nil {
		logger.Error("warehouse close error", "error", err)
	}
	if err := results.Close(); err != nil {
		logger.Error("results store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry *criteria.Registry,
	engine *scoring.Engine,
	inventory domain.InventorySource,
	results *store.Store,
	metrics *observability.Metrics,
) error {
	stations, err := inventory.ListStations(ctx)
	if err != nil {
		return err
	}
	logger.Info("inventory loaded", "stations", len(stations))
	if err := results.SaveInventory(ctx, stations); err != nil {
		return err
	}

	snapshot, err := scoring.BuildSnapshot(ctx, registry, stations, logger, metrics)
	if err != nil {
		return err
	}
	if err := results.SaveRawValues(ctx, snapshot); err != nil {
		return err
	}

	tables := classify.DefaultTables()
	if cfg.TablesPath != "" {
		tables, err = classify.LoadFile(cfg.TablesPath)
		if err != nil {
			return err
		}
		logger.Info("classification tables loaded", "path", cfg.TablesPath, "tables", len(tables))
	}

	records, err := engine.Run(snapshot, tables, func(done, total int) {
		if done%100 == 0 || done == total {
			logger.Info("scoring progress", "done", done, "total", total)
		}
	})
	if err != nil {
		return err
	}

	return results.SaveScores(ctx, records)
}
