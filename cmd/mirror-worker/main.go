package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, applog.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)

	mirror, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", applog.FieldError, err)
		os.Exit(1)
	}

	// The record store is only read for the startup backfill, so the worker
	// opens it without the event publisher.
	var source worker.Source
	if cfg.SyncOnStartup {
		storeCfg := backendCfg
		storeCfg.AMQPURL = ""
		res, err := factory.CreateBackend(ctx, storeCfg)
		if err != nil {
			logger.Warn("Record store unavailable, skipping startup sync", applog.FieldError, err)
		} else {
			defer res.Cleanup()
			source = res.Store
		}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client",
			applog.FieldErrorType, applog.ErrorTypeNetwork,
			applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror, source)

	logger.Info("Starting mirror worker",
		applog.FieldOperation, applog.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"sheets_enabled", cfg.SheetsEnabled())

	if err := w.StartupSyncCheck(ctx); err != nil {
		// Not fatal: events keep flowing and the next start retries.
		logger.Error("Startup sync check failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeExpenseEvents(gctx, w.HandleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Mirror worker stopped")
}
