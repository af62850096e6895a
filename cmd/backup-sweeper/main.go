package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dentalcore/backupd/internal/config"
	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/db"
	"github.com/dentalcore/backupd/internal/dump"
	"github.com/dentalcore/backupd/internal/logging"
	"github.com/dentalcore/backupd/internal/metrics"
	"github.com/dentalcore/backupd/internal/storage"
	"github.com/dentalcore/backupd/internal/sweep"
)

func main() {
	onceFlag := flag.Bool("once", false, "Run a single sweep and exit (for external cron)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("backup-sweeper"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	producer := dump.NewProducer(logger, pool, cfg)
	store := storage.NewClient(logger, cfg)
	restorer := dump.NewRestorer(logger, pool, cfg)
	services := core.NewServices(pool, producer, store, restorer, logger)

	sweeper := sweep.New(logger, services.Tenant, services.Schedule, services.Backup)

	if *onceFlag {
		result, err := sweeper.Sweep(ctx, time.Now().UTC())
		if err != nil {
			logger.Fatal().Err(err).Msg("sweep failed")
		}
		if result.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	c := cron.New()
	spec := fmt.Sprintf("@every %s", cfg.SweepInterval)
	if _, err := c.AddFunc(spec, func() {
		if _, err := sweeper.Sweep(ctx, time.Now().UTC()); err != nil {
			logger.Error().Err(err).Msg("sweep failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Str("spec", spec).Msg("invalid sweep interval")
	}

	logger.Info().Str("interval", cfg.SweepInterval.String()).Msg("starting sweeper")
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down sweeper")
	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Minute):
		logger.Warn().Msg("sweep still running at shutdown deadline")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)
}
