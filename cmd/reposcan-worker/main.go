package main

import (
	"os"

	"reposcan/internal/amqp"
	"reposcan/internal/cli"
	"reposcan/internal/config"
	applog "reposcan/internal/log"
	"reposcan/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting reposcan-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return 1
	}
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required by the export log worker")
		return 1
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return 1
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Consuming export events",
		"queue", cfg.AMQPQueue,
		"db_path", cfg.SQLiteDBPath)
	if err := worker.NewExportLogWorker(repo).Run(ctx, client); err != nil {
		logger.Error("Export event consumption failed", applog.FieldError, err)
		return 1
	}
	logger.Info("Worker shutdown complete")
	return 0
}
