package main

import (
	"errors"
	"fmt"

	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/cli"
	"finledger/internal/log"
	"finledger/internal/metrics"
	"finledger/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting finledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Worker needs a broker", errors.New("AMQP_URL is not set"))
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	store := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	exporter, err := backend.NewFactory(logger.Logger).CreateExporter(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize history exporter", err)
	}
	if !exporter.Remote {
		logger.Warn("Exporting to memory only - set GOOGLE_SPREADSHEET_ID to export to Google Sheets")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	collector := metrics.NewCollector("finledger_worker")
	exportWorker := worker.NewExportWorker(store.Store, exporter.Exporter, collector)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.ServeMetrics(gctx, logger, cfg.MetricsAddr, collector)
	})
	g.Go(func() error {
		err := client.ConsumeMonthUpdates(gctx, exportWorker.HandleMonthUpdated)
		if gctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("consume month updates: %w", err)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}
	logger.Info("finledger-worker stopped")
}
