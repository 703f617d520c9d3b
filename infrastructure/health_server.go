package infrastructure

import (
	"context"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the service name reported alongside the overall status
const HealthServiceName = "lotteryledger"

// HealthProbe reports whether a dependency is usable
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1.Health and keeps it in sync with its probes
type HealthServer struct {
	addr     string
	interval time.Duration
	probes   []HealthProbe
	health   *health.Server
	server   *grpc.Server
	listener net.Listener
}

// NewHealthServer creates a health server listening on addr
func NewHealthServer(addr string, probes ...HealthProbe) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &HealthServer{
		addr:     addr,
		interval: 10 * time.Second,
		probes:   probes,
		health:   hs,
		server:   server,
	}
}

// Start binds the listener, then serves and probes in the background until ctx is done
func (s *HealthServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = lis

	go func() {
		if err := s.server.Serve(lis); err != nil {
			log.WithError(err).Error("Health server stopped")
		}
	}()

	s.probe(ctx)
	go s.probeLoop(ctx)

	log.WithField("addr", lis.Addr().String()).Info("Health server listening")
	return nil
}

// Addr returns the bound listener address
func (s *HealthServer) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop marks everything NOT_SERVING and stops the gRPC server
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := p.Check(checkCtx)
		cancel()
		if err != nil {
			log.WithFields(log.Fields{
				"probe": p.Name,
				"error": err,
			}).Warn("Health probe failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthServiceName, status)
}

// NATSProbe reports an error while the client is disconnected
func NATSProbe(client *NATSClient) HealthProbe {
	return HealthProbe{
		Name: "nats",
		Check: func(ctx context.Context) error {
			if !client.IsConnected() {
				return fmt.Errorf("nats not connected")
			}
			return nil
		},
	}
}
