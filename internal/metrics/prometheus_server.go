package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusServer implements the Server interface and serves Prometheus metrics
// over HTTP.
type PrometheusServer struct {
	server *http.Server
}

// NewPrometheusServer creates a new PrometheusServer that will serve metrics
// from reg at the specified address and path. A nil reg serves the default
// registry.
func NewPrometheusServer(address, path string, reg *prometheus.Registry) *PrometheusServer {
	var handler http.Handler
	if reg != nil {
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	} else {
		handler = promhttp.Handler()
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &PrometheusServer{
		server: &http.Server{
			Addr:    address,
			Handler: mux,
		},
	}
}

// Start begins serving metrics. It blocks until the context is canceled
// or an error occurs. Returns nil when the server is shut down gracefully.
func (s *PrometheusServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the metrics server.
func (s *PrometheusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
