package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/archive"
	"finledger/internal/cache"
	"finledger/internal/cli"
	"finledger/internal/core"
	apphttp "finledger/internal/http"
	"finledger/internal/log"
	"finledger/internal/metrics"
	"finledger/internal/services"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardCacheSize = 1000
	cacheSweepInterval = time.Minute
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting finledger")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	backend := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()
	store := backend.Store

	keyer, err := archive.NewKeyer(cfg.ArchiveTimeZone)
	if err != nil {
		cli.Fatal(logger, "Invalid archive time zone", err)
	}

	collector := metrics.NewCollector("finledger")

	// Publishing is optional; without a broker archive entries are only stored.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, month updates will not be exported", log.FieldError, err)
		} else {
			publisher = client
			defer client.Close()
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	dashboardCache := cache.NewLRUCache[core.Summary](dashboardCacheSize, cfg.DashboardCacheTTL)
	caches := cache.NewManager(logger.With(log.FieldComponent, log.ComponentCache).Logger)
	caches.Register("dashboard", dashboardCache)
	collector.RegisterCacheStats("dashboard", dashboardCache.Stats)

	dashboard := services.NewDashboardService(store, dashboardCache, time.Now)
	months := services.NewMonthService(store, store, publisher, services.MonthServiceConfig{
		Keyer:          keyer,
		StrictIdentity: cfg.StrictIdentity,
		Metrics:        collector,
		OnChange:       dashboard.Invalidate,
	})
	cards := services.NewCardService(store, time.Now)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		JWTSecret:          cfg.AuthJWTSecret,
		BlockSuspicious:    cfg.BlockSuspicious,
	}, apphttp.Deps{
		Months:    months,
		Dashboard: dashboard,
		Cards:     cards,
		Ready:     store.Ping,
		Metrics:   collector,
		Logger:    logger.WithComponent(log.ComponentHTTP),
	})

	if !cfg.AuthEnabled() {
		logger.Warn("AUTH_JWT_SECRET not set, trusting the X-User-Email header")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	caches.Start(gctx, cacheSweepInterval)

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
	}
	caches.Wait()
	logger.Info("finledger stopped")
}
