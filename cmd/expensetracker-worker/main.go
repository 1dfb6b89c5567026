package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load .env", applog.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting expensetracker-worker", applog.FieldOperation, applog.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	}()

	mirror, err := factory.CreateMirror(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger mirror", applog.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(res.Backend.Repo, mirror, factory.CreateSender(backendCfg), cfg.SyncBatchSize, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	if amqpClient := res.Backend.AMQP; amqpClient != nil {
		g.Go(func() error {
			return amqpClient.Consume(gctx, syncWorker)
		})
	} else {
		logger.Warn("AMQP unavailable, running the periodic sweep only")
	}

	if syncWorker.MirrorEnabled() {
		sweeper := worker.NewSweeper(syncWorker, cfg.SyncBatchSize, worker.SweeperConfig{Interval: cfg.SyncInterval}, logger)
		g.Go(func() error {
			if err := sweeper.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return sweeper.Stop(stopCtx)
		})
	} else {
		logger.Info("Skipping periodic sync, ledger mirror disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
