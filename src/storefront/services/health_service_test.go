package services_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/services"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakePinger struct{ up atomic.Bool }

func (f *fakePinger) Ping(context.Context) bool { return f.up.Load() }

func newPinger(up bool) *fakePinger {
	p := &fakePinger{}
	p.up.Store(up)
	return p
}

func dialHealth(t *testing.T, store services.Pinger) healthpb.HealthClient {
	t.Helper()
	logger, _ := test.NewNullLogger()
	lis := bufconn.Listen(1 << 20)
	srv := services.NewGRPCServer(services.NewHealthCheckService(store, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthCheck(t *testing.T) {
	store := newPinger(true)
	client := dialHealth(t, store)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: services.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	store.up.Store(false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealthCheckUnknownService(t *testing.T) {
	client := dialHealth(t, newPinger(true))
	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "paymentservice"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
