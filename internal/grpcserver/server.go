// Package grpcserver serves the standard gRPC health protocol for the
// aggregator, reporting NOT_SERVING while the job store is unreachable.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported alongside the "" entry.
const ServiceName = "jobmate.aggregator"

// Pinger checks a dependency. store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server with a health service driven by a Pinger.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	pinger Pinger
}

// New constructs a Server. Status starts as NOT_SERVING until the first
// Refresh.
func New(p Pinger) *Server {
	s := &Server{
		grpc:   grpc.NewServer(grpc.UnaryInterceptor(logErrors)),
		health: health.NewServer(),
		pinger: p,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// ─── Health ──────────────────────────────────────────────────────────────────

// Refresh pings the store once and updates the reported status.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		slog.Warn("grpcserver: store ping failed", "err", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.set(st)
	return st
}

// Watch refreshes the status every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func logErrors(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		slog.Warn("grpcserver: call failed", "method", info.FullMethod, "code", status.Code(err), "err", err)
	}
	return resp, err
}
