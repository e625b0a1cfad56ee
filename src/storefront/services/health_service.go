package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the name the health service answers for besides "".
const ServiceName = "storefront"

// HealthCheckService reports SERVING while the cart store answers pings.
type HealthCheckService struct {
	healthpb.UnimplementedHealthServer
	store Pinger
	log   logrus.FieldLogger
}

// NewHealthCheckService constructor
func NewHealthCheckService(store Pinger, log logrus.FieldLogger) *HealthCheckService {
	return &HealthCheckService{store: store, log: log}
}

// Check pings the store.
func (h *HealthCheckService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	if h.store.Ping(ctx) {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	h.log.Warn("health check: cart store unreachable")
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}

// NewGRPCServer returns a traced gRPC server exposing the health service and reflection.
func NewGRPCServer(health *HealthCheckService) *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	healthpb.RegisterHealthServer(srv, health)
	reflection.Register(srv)
	return srv
}
