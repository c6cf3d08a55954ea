package main

import (
	"context"
	"time"

	"finledger/internal/cli"
	"finledger/internal/log"
	"finledger/internal/metrics"
	"finledger/internal/services"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentStatement)
	logger.Info("Starting statement-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	store := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()

	collector := metrics.NewCollector("finledger_statements")
	cards := services.NewCardService(store.Store, time.Now)
	processor := services.NewStatementProcessor(store.Store, cards, cfg.StatementInterval, collector)

	if err := processor.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start statement processor", err)
	}
	logger.Info("Statement worker started", "interval", cfg.StatementInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.ServeMetrics(gctx, logger, cfg.MetricsAddr, collector)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-processor.Done():
		}
		cli.RunCleanup(logger, "statement processor", shutdownTimeout, func(ctx context.Context) error {
			return processor.Stop(ctx)
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Statement worker stopped with error", log.FieldError, err)
	}
	logger.Info("statement-worker stopped")
}
