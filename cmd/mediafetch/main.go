package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Belphemur/MediaFetch/internal/api"
	"github.com/Belphemur/MediaFetch/internal/cache"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/fetcher"
	grpcserver "github.com/Belphemur/MediaFetch/internal/grpc"
	"github.com/Belphemur/MediaFetch/internal/health"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/reporting"
	"github.com/Belphemur/MediaFetch/internal/services"
	"github.com/Belphemur/MediaFetch/internal/storage"
	"github.com/Belphemur/MediaFetch/internal/transcode"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("version", version).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("download_directory", cfg.Download.Directory).
		Str("bucket_url", cfg.Storage.BucketURL).
		Str("cache_provider", cfg.Cache.Provider).
		Int("max_concurrent", cfg.Download.MaxConcurrent).
		Bool("cookies", cfg.Download.Cookies != "").
		Msg("Application started with configuration")

	if enabled, err := reporting.Init(cfg, version); err != nil {
		logger.Error().Err(err).Msg("Error reporting disabled")
	} else if enabled {
		logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Error reporting enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage.BucketURL, cfg.Download.Directory)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open artifact store")
	}

	retention := config.ParseDuration("storage.retention", cfg.Storage.Retention, 24*time.Hour)
	index, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           config.ParseDuration("cache.ttl", cfg.Cache.TTL, retention),
		Logger:        cache.NewZerologLogger(logger),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "artifacts",
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create artifact index")
	}

	mediaFetcher := services.NewMediaFetcher(
		fetcher.NewYtDlpDownloaderFromConfig(cfg),
		transcode.NewFFmpegTranscoder(cfg.Tools.FfmpegPath, cfg.Tools.FfprobePath),
		store,
		index,
		services.OptionsFromConfig(cfg),
	)

	checker := health.NewChecker(5 * time.Second)
	checker.Add("yt-dlp", health.BinaryCheck(cfg.Tools.YtDlpPath))
	checker.Add("ffmpeg", health.BinaryCheck(cfg.Tools.FfmpegPath))
	checker.Add("ffprobe", health.BinaryCheck(cfg.Tools.FfprobePath))
	checker.Add("storage", store.Ping)

	defaultFormat, err := models.ParseFormat(cfg.Download.DefaultFormat, models.FormatOriginal)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid default format, using original")
		defaultFormat = models.FormatOriginal
	}

	server, err := api.NewServer(api.ServerConfig{
		Address:       cfg.Server.Address,
		Port:          cfg.Server.Port,
		DefaultFormat: defaultFormat,
	}, mediaFetcher, store, checker)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	var background sync.WaitGroup

	janitor := storage.NewJanitor(store, retention,
		config.ParseDuration("storage.sweep_interval", cfg.Storage.SweepInterval, 15*time.Minute))
	background.Add(1)
	go func() {
		defer background.Done()
		_ = janitor.Run(ctx)
	}()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	// gRPC health endpoint for orchestrators that probe over gRPC
	if cfg.GRPC.Enabled {
		grpcServer, healthServer := grpcserver.NewGRPCServer()
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", address).Msg("Failed to create gRPC listener")
		}

		background.Add(1)
		go func() {
			defer background.Done()
			grpcserver.WatchHealth(ctx, healthServer, checker,
				config.ParseDuration("grpc.check_interval", cfg.GRPC.CheckInterval, 30*time.Second))
		}()
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("gRPC server stopped")
			}
		}()
		defer grpcServer.GracefulStop()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", server.Addr()).Msg("Starting HTTP server")
		serveErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
	}

	background.Wait()

	if err := mediaFetcher.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close artifact index")
	}
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close artifact store")
	}
	reporting.Flush(2 * time.Second)

	logger.Info().Msg("Server stopped gracefully")
}
