// Package health tracks backing-store reachability and reports it over the
// gRPC health protocol and a small JSON endpoint.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"skillnest/internal/common"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings its dependency on an interval and mirrors the result into
// a grpc health server under every registered service name.
type Monitor struct {
	server   *health.Server
	pinger   Pinger
	services []string
	interval time.Duration
	log      *slog.Logger

	mu      sync.RWMutex
	healthy bool
	checked time.Time
}

func NewMonitor(pinger Pinger, interval time.Duration, log *slog.Logger, services ...string) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		server:   health.NewServer(),
		pinger:   pinger,
		services: append([]string{""}, services...),
		interval: interval,
		log:      log.With("component", "health"),
	}
}

// Server is the grpc health service backing this monitor.
func (m *Monitor) Server() *health.Server {
	return m.server
}

// Check pings once and publishes the result.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	healthy := err == nil

	m.mu.Lock()
	changed := healthy != m.healthy || m.checked.IsZero()
	m.healthy = healthy
	m.checked = time.Now()
	m.mu.Unlock()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !healthy {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	for _, svc := range m.services {
		m.server.SetServingStatus(svc, status)
	}
	if changed {
		if healthy {
			m.log.Info("dependency healthy")
		} else {
			m.log.Warn("dependency unhealthy", "error", err)
		}
	}
	return healthy
}

// Run checks until ctx ends, then marks everything NOT_SERVING.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// RegisterRoutes mounts GET /health.
func (m *Monitor) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", m.handle).Methods(http.MethodGet)
}

func (m *Monitor) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	healthy, checked := m.healthy, m.checked
	m.mu.RUnlock()

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	common.WriteJSON(w, code, map[string]interface{}{
		"status":    status,
		"checkedAt": checked,
	})
}

// NewGRPCServer returns a grpc server exposing the health and reflection
// services.
func NewGRPCServer(m *Monitor) *grpc.Server {
	s := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s, m.Server())
	reflection.Register(s)
	return s
}
