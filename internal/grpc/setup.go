package grpc

import (
	"context"
	"sync"
	"time"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/health"
)

// ServiceName is the health service name covering the fetch pipeline.
const ServiceName = "mediafetch.v1.MediaFetch"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// Reporter runs the dependency checks mirrored into the gRPC health service.
type Reporter interface {
	Run(ctx context.Context) health.Report
}

// NewGRPCServer creates a gRPC server exposing the standard health service and
// reflection, instrumented with Prometheus metrics. Statuses start as NOT_SERVING
// until WatchHealth reports.
func NewGRPCServer() (*grpc.Server, *grpchealth.Server) {
	// Set up Prometheus gRPC server metrics once per process
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Register reflection service for tools like grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer, healthServer
}

// UpdateHealth runs the checks once and publishes the result.
func UpdateHealth(ctx context.Context, hs *grpchealth.Server, reporter Reporter) bool {
	report := reporter.Run(ctx)
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !report.Healthy {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		logger := config.GetLogger()
		for _, r := range report.Checks {
			if !r.OK {
				logger.Warn().Str("check", r.Name).Str("error", r.Error).Msg("Dependency check failed")
			}
		}
	}
	hs.SetServingStatus(ServiceName, status)
	hs.SetServingStatus("", status)
	return report.Healthy
}

// WatchHealth refreshes the health status every interval until ctx is cancelled,
// then marks every service as shutting down.
func WatchHealth(ctx context.Context, hs *grpchealth.Server, reporter Reporter, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	UpdateHealth(ctx, hs, reporter)
	for {
		select {
		case <-ticker.C:
			UpdateHealth(ctx, hs, reporter)
		case <-ctx.Done():
			hs.Shutdown()
			return
		}
	}
}
