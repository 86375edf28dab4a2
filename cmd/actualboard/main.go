package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"actualboard/internal/actual/cached"
	"actualboard/internal/cli"
	"actualboard/internal/events"
	apphttp "actualboard/internal/http"
	"actualboard/internal/log"
	"actualboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendRes := cli.InitBackend(context.Background(), logger, cfg)
	if backendRes.Cleanup != nil {
		defer func() {
			if err := backendRes.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	// One memoizing cache in front of the source; the refresher resets
	// it at the start of every run.
	source := cached.New(backendRes.Source)

	var publisher worker.Publisher
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Initialized AMQP client",
				log.FieldExchange, cfg.AMQP.Exchange,
				log.FieldQueue, cfg.AMQP.Queue)
		}
	}

	workerConfig := worker.DefaultConfig()
	if cfg.Refresh.Interval > 0 {
		workerConfig.Interval = cfg.Refresh.Interval
	}

	refresher := worker.NewRefresher(source, source, publisher, cfg.Options(), workerConfig)

	srv := apphttp.NewServer(":"+cfg.Server.Port, refresher, apphttp.Options{
		Report:         cfg.Options(),
		Backend:        cfg.Backend.Kind,
		TrustedProxies: cfg.Server.TrustedProxies,
		CacheStats:     source.Stats,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := refresher.Stop(shutdownCtx); err != nil {
			logger.Error("Refresher stop error", log.FieldError, err)
		}
	})

	if err := refresher.Start(ctx); err != nil {
		logger.Error("Failed to start refresher", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting actualboard server",
		"port", cfg.Server.Port,
		log.FieldBackend, cfg.Backend.Kind,
		"refresh_interval", workerConfig.Interval.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Server.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
