// Package grpcserver runs the gRPC side listener that reports service health.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service key reported alongside the overall "" status.
const ServiceName = "notekeeper"

// Pinger checks a dependency. *postgres.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health flips the standard health service between SERVING and NOT_SERVING
// according to the probe.
type Health struct {
	hs      *health.Server
	probe   Pinger
	timeout time.Duration
	log     *zap.Logger
	serving bool
}

// NewHealth creates a Health that starts NOT_SERVING until the first probe passes.
func NewHealth(probe Pinger, log *zap.Logger) *Health {
	h := &Health{hs: health.NewServer(), probe: probe, timeout: 2 * time.Second, log: log}
	h.set(false)
	return h
}

// NewServer builds a gRPC server with recover and logging interceptors and
// registers the health service on it.
func NewServer(h *Health, log *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
	))
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.hs)
	return s
}

// Check runs the probe once and publishes the result.
func (h *Health) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	err := h.probe.Ping(ctx)
	ok := err == nil
	if ok != h.serving {
		if ok {
			h.log.Info("health: serving")
		} else {
			h.log.Warn("health: not serving", zap.Error(err))
		}
	}
	h.set(ok)
	return ok
}

// Run probes every interval until ctx is done, then reports NOT_SERVING for good.
func (h *Health) Run(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.hs.Shutdown()
			return
		case <-t.C:
			h.Check(ctx)
		}
	}
}

func (h *Health) set(ok bool) {
	h.serving = ok
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)
}
