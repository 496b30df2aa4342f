package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"reposcan/internal/amqp"
	"reposcan/internal/backend"
	"reposcan/internal/cli"
	"reposcan/internal/config"
	"reposcan/internal/content"
	apphttp "reposcan/internal/http"
	applog "reposcan/internal/log"
	"reposcan/internal/services"
)

const (
	loadTimeout     = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return 1
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize table source", applog.FieldError, err, "backend", bcfg.Type)
		return 1
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	table, err := cli.LoadTable(ctx, res.Reader, loadTimeout)
	if err != nil {
		logger.Error("Failed to load repository table", applog.FieldError, err,
			applog.FieldOperation, applog.OpLoad, "backend", bcfg.Type)
		return 1
	}
	logger.Info("Repository table loaded",
		applog.FieldRowCount, table.Len(),
		"backend", bcfg.Type,
		"loaded_at", table.LoadedAt().Format(time.RFC3339))

	page, err := content.Load(cfg.PanelsFile)
	if err != nil {
		logger.Error("Failed to load dashboard panels", applog.FieldError, err, "panels_file", cfg.PanelsFile)
		return 1
	}

	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, export events disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Export events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	readyChecks := map[string]apphttp.Pinger{}
	if p, ok := res.Reader.(apphttp.Pinger); ok {
		readyChecks[bcfg.Type.String()] = p
	}

	srv := apphttp.NewServer(table, page, apphttp.Options{
		Addr:                ":" + cfg.Port,
		Logger:              logger,
		Exports:             services.NewExportService(publisher),
		TopN:                cfg.TopN,
		ExportRatePerMinute: cfg.ExportRatePerMinute,
		CacheSize:           cfg.CacheSize,
		CacheTTL:            cfg.CacheTTL,
		ReadyChecks:         readyChecks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting reposcan server", "port", cfg.Port, "backend", bcfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		return 1
	}
	logger.Info("Server stopped gracefully")
	return 0
}
