package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for the metrics server.
type Config struct {
	Enabled bool
	Address string
	Path    string
}

// NoopServer is a no-op implementation of the Server interface.
// It does nothing when started or shut down.
type NoopServer struct{}

// Start is a no-op that returns immediately.
func (n *NoopServer) Start(ctx context.Context) error {
	return nil
}

// Shutdown is a no-op that returns immediately.
func (n *NoopServer) Shutdown(ctx context.Context) error {
	return nil
}

// New creates a Collector and Server based on the provided configuration.
// When metrics are disabled both are no-ops; otherwise a Prometheus collector
// is registered on a fresh registry and served over HTTP.
func New(cfg Config) (Collector, Server) {
	if !cfg.Enabled {
		return &NoopCollector{}, &NoopServer{}
	}

	reg := prometheus.NewRegistry()
	collector := NewPrometheusCollector(reg)
	server := NewPrometheusServer(cfg.Address, cfg.Path, reg)
	return collector, server
}
