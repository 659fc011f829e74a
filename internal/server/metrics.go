package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
)

const (
	// DefaultMetricsAddr is where `meetsync watch` serves /metrics.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds the graceful shutdown of the watch process.
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures NewMetricsServer.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider must use the prometheus exporter.
	InstrumentationProvider *instrumentation.Provider

	// Health serves /healthz, /readyz and /healthz/detailed. A checker without
	// a ServerContext is used when nil.
	Health *HealthChecker

	Logger logging.Logger
}

// MetricsServer serves Prometheus metrics and the health endpoints of the
// watch process.
type MetricsServer struct {
	addr   string
	health *HealthChecker
	logger logging.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// NewMetricsServer checks that the provider exports to the Prometheus
// registry scraped by /metrics.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	p := config.InstrumentationProvider
	switch {
	case p == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !p.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	case !p.HasPrometheusExporter():
		return nil, fmt.Errorf("metrics exporter must be %q to serve /metrics", instrumentation.ExporterPrometheus)
	}

	s := &MetricsServer{
		addr:   config.Addr,
		health: config.Health,
		logger: config.Logger,
	}
	if s.addr == "" {
		s.addr = DefaultMetricsAddr
	}
	if s.health == nil {
		s.health = NewHealthChecker(nil)
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}
	return s, nil
}

// Handler returns the mux with /metrics and the health endpoints.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start listens on the configured address and serves until Shutdown. It
// returns http.ErrServerClosed after a graceful shutdown.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
		IdleTimeout:       metricsIdleTimeout,
	}

	s.mu.Lock()
	s.srv, s.listener = srv, ln
	s.mu.Unlock()

	s.logger.Info("Metrics server listening", "addr", ln.Addr().String())
	return srv.Serve(ln)
}

// Shutdown stops a started server. It is a no-op before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("Shutting down metrics server")
	return srv.Shutdown(ctx)
}

// Addr returns the bound address once Start is listening, the configured one
// before.
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
