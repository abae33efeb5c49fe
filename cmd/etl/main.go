package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/quakeline/nordic-etl/internal/adapter/http"
	kafkaadapter "github.com/quakeline/nordic-etl/internal/adapter/kafka"
	"github.com/quakeline/nordic-etl/internal/adapter/spool"
	"github.com/quakeline/nordic-etl/internal/catalog"
	"github.com/quakeline/nordic-etl/internal/config"
	"github.com/quakeline/nordic-etl/internal/domain"
	"github.com/quakeline/nordic-etl/internal/inventory"
	"github.com/quakeline/nordic-etl/internal/observability"
	"github.com/quakeline/nordic-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Optional station inventory for channel-id resolution.
	var channels []domain.WaveformID
	if cfg.InventoryPath != "" {
		channels, err = inventory.Load(cfg.InventoryPath)
		if err != nil {
			logger.Error("failed to load inventory", "path", cfg.InventoryPath, "error", err)
			os.Exit(1)
		}
		logger.Info("station inventory loaded", "path", cfg.InventoryPath, "channels", len(channels))
	} else {
		logger.Info("no station inventory configured")
	}

	reader := spool.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	assembler := domain.NewAssembler(domain.Options{
		Authority:            cfg.Authority,
		DefaultNetwork:       cfg.DefaultNetwork,
		DefaultChannelPrefix: cfg.DefaultChannelPrefix,
		Verbose:              cfg.VerboseWarnings,
	}, channels, nil, logger)

	loader := pipeline.MultiLoader{writer}
	var store *catalog.Store
	if cfg.CatalogDB != "" {
		store, err = catalog.Open(cfg.CatalogDB, metrics)
		if err != nil {
			logger.Error("failed to open catalog", "path", cfg.CatalogDB, "error", err)
			os.Exit(1)
		}
		loader = append(loader, store)
		logger.Info("catalog sink enabled", "path", cfg.CatalogDB)
	}

	p := pipeline.New(reader, assembler, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("catalog close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
