package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quipchat/quipd/internal/config"
	"github.com/quipchat/quipd/internal/logging"
)

// Server coordinates the configured listeners and hands accepted connections
// to the session handler.
type Server struct {
	cfg       *config.Config
	tlsConfig *tls.Config
	logger    *slog.Logger
	handler   ConnectionHandler

	listeners []*Listener
	mu        sync.Mutex
}

// New creates a new Server with the given configuration.
func New(cfg *config.Config) (*Server, error) {
	logger := logging.NewLogger(cfg.LogLevel)

	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	// Load TLS configuration if certificates are specified
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading TLS certificate: %w", err)
		}

		s.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   cfg.TLS.MinTLSVersion(),
		}
		logger.Info("TLS configured",
			slog.String("cert", cfg.TLS.CertFile),
			slog.String("min_version", cfg.TLS.MinVersion),
		)
	}

	return s, nil
}

// SetHandler sets the connection handler for all listeners.
// Must be called before Run.
func (s *Server) SetHandler(handler ConnectionHandler) {
	s.handler = handler
}

// SetTLSConfig overrides the TLS configuration. Intended for tests that build
// certificates in memory.
func (s *Server) SetTLSConfig(cfg *tls.Config) {
	s.tlsConfig = cfg
}

// Run starts all configured listeners and blocks until the context is cancelled.
// All listeners run in their own goroutines.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()

	if s.handler == nil {
		s.mu.Unlock()
		return fmt.Errorf("no connection handler configured")
	}

	for _, lc := range s.cfg.Listeners {
		var tlsCfg *tls.Config
		if lc.Mode == config.ModeTLS {
			if s.tlsConfig == nil {
				s.mu.Unlock()
				return fmt.Errorf("listener %s: TLS required but not configured", lc.Address)
			}
			tlsCfg = s.tlsConfig
		}

		listener := NewListener(ListenerConfig{
			Address:        lc.Address,
			Mode:           lc.Mode,
			TLSConfig:      tlsCfg,
			LogTransaction: s.cfg.LogLevel == "debug",
			Logger:         s.logger,
			Handler:        s.handler,
		})
		s.listeners = append(s.listeners, listener)
	}

	s.mu.Unlock()

	s.logger.Info("starting server",
		slog.String("hostname", s.cfg.Hostname),
		slog.Int("listener_count", len(s.listeners)),
	)

	// A failed listener (bind error) takes the whole server down so the
	// process can exit non-zero instead of limping along half-bound.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, len(s.listeners))

	for _, l := range s.listeners {
		wg.Add(1)
		go func(listener *Listener) {
			defer wg.Done()
			if err := listener.Start(ctx); err != nil && err != context.Canceled {
				errChan <- fmt.Errorf("listener %s: %w", listener.Address(), err)
			}
		}(l)
	}

	var firstErr error
	select {
	case <-ctx.Done():
	case err := <-errChan:
		firstErr = err
		cancel()
	}

	s.logger.Info("server shutting down")

	wg.Wait()

	close(errChan)
	for err := range errChan {
		if firstErr == nil {
			firstErr = err
		}
		s.logger.Error("listener error", slog.String("error", err.Error()))
	}

	s.logger.Info("server stopped")

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Shutdown closes all listeners so Run can drain and return.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listeners {
		_ = l.Close()
	}
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// TLSConfig returns the server's TLS configuration, if any.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// Config returns the server's configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}
