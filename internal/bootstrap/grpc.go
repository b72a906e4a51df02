package bootstrap

import (
	"context"
	"log/slog"
	"net"
	"time"

	"go.uber.org/fx"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/eleven-am/helmet-detector/internal/health"
)

const (
	detectorServiceName = "helmet.Detector"
	probeInterval       = 15 * time.Second
)

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func NewGRPCHealthServer() *grpchealth.Server {
	return grpchealth.NewServer()
}

func RegisterHealthService(server *grpc.Server, hs *grpchealth.Server) {
	healthpb.RegisterHealthServer(server, hs)
}

// setServing mirrors HTTP readiness onto the gRPC health service.
func setServing(hs *grpchealth.Server, ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(detectorServiceName, status)
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, hs *grpchealth.Server, checker *health.Handler, cfg *Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				cancel()
				return err
			}
			setServing(hs, true)
			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			go watchReadiness(ctx, hs, checker, logger)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			hs.Shutdown()
			server.GracefulStop()
			return nil
		},
	})
}

func watchReadiness(ctx context.Context, hs *grpchealth.Server, checker *health.Handler, logger *slog.Logger) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	last := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			ready := checker.Ready(probeCtx)
			cancel()
			if ready != last {
				logger.Warn("readiness changed", "ready", ready)
				last = ready
			}
			setServing(hs, ready)
		}
	}
}

var GRPCModule = fx.Options(
	fx.Provide(NewGRPCServer, NewGRPCHealthServer),
	fx.Invoke(RegisterHealthService),
	fx.Invoke(StartGRPCServer),
)
