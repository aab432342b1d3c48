package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/audit"
	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/mine-data-normalizer/internal/adapter/kafka"
	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/mapbox"
	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/rulefile"
	"github.com/couchcryptid/mine-data-normalizer/internal/config"
	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
	"github.com/couchcryptid/mine-data-normalizer/internal/observability"
	"github.com/couchcryptid/mine-data-normalizer/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	rules := domain.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = rulefile.Load(cfg.RulesFile, rules)
		if err != nil {
			logger.Error("failed to load rule file", "path", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
		logger.Info("rule overlay loaded", "path", cfg.RulesFile)
	}
	normalizer := domain.NewNormalizer(rules)

	// Geocode verification is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	var loader pipeline.BatchLoader = writer
	var auditStore *audit.Store
	if cfg.AuditDBPath != "" {
		auditStore, err = audit.Open(ctx, cfg.AuditDBPath)
		if err != nil {
			logger.Error("failed to open audit database", "path", cfg.AuditDBPath, "error", err)
			os.Exit(1)
		}
		loader = audit.NewLoader(writer, auditStore, logger)
		logger.Info("conversion audit enabled", "path", cfg.AuditDBPath, "run_id", auditStore.RunID())
	}

	transformer := pipeline.NewTransformer(normalizer, geocoder, metrics, logger)
	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, normalizer, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start normalization pipeline.
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
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if auditStore != nil {
		if err := auditStore.Close(); err != nil {
			logger.Error("audit database close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
