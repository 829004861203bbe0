package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/quipchat/quipd/internal/config"
	"github.com/quipchat/quipd/internal/logging"
)

// ConnectionHandler is called for each new connection. It owns the session
// until it returns; the listener closes the connection afterwards.
type ConnectionHandler func(ctx context.Context, conn *Connection)

// Listener manages a single TCP listener for accepting chat connections.
type Listener struct {
	address   string
	mode      config.ListenerMode
	tlsConfig *tls.Config
	connCfg   ConnectionConfig
	handler   ConnectionHandler
	logger    *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

// ListenerConfig holds configuration for creating a new Listener.
type ListenerConfig struct {
	Address        string
	Mode           config.ListenerMode
	TLSConfig      *tls.Config
	LogTransaction bool
	Logger         *slog.Logger
	Handler        ConnectionHandler
}

// NewListener creates a new Listener with the given configuration.
func NewListener(cfg ListenerConfig) *Listener {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		address:   cfg.Address,
		mode:      cfg.Mode,
		tlsConfig: cfg.TLSConfig,
		connCfg: ConnectionConfig{
			LogTransaction: cfg.LogTransaction,
			Logger:         logger,
		},
		handler: cfg.Handler,
		logger:  logging.WithListener(logger, cfg.Address, string(cfg.Mode)),
	}
}

// Start begins listening for connections.
// It blocks until the context is cancelled or the listener cannot bind.
func (l *Listener) Start(ctx context.Context) error {
	var err error
	var ln net.Listener

	if l.mode == config.ModeTLS {
		if l.tlsConfig == nil {
			return errors.New("TLS configuration required for tls mode")
		}
		ln, err = tls.Listen("tcp", l.address, l.tlsConfig)
	} else {
		ln, err = net.Listen("tcp", l.address)
	}

	if err != nil {
		return err
	}

	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()

	l.logger.Info("listener started",
		slog.String("address", l.address),
		slog.String("mode", string(l.mode)),
	)

	go l.acceptLoop(ctx)

	// Wait for context cancellation
	<-ctx.Done()

	l.logger.Info("listener shutting down")

	if err := l.Close(); err != nil {
		l.logger.Debug("error closing listener",
			slog.String("error", err.Error()),
		)
	}

	// Wait for all connections to complete
	l.wg.Wait()

	l.logger.Info("listener stopped")
	return ctx.Err()
}

// acceptLoop accepts connections until the listener is closed. Accept errors
// never stop the loop; they are logged and the accept is retried.
func (l *Listener) acceptLoop(ctx context.Context) {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()

			if closed {
				return
			}

			l.logger.Warn("accept error",
				slog.String("error", err.Error()),
			)
			time.Sleep(5 * time.Millisecond)
			continue
		}

		// Handle connection in its own goroutine
		l.wg.Add(1)
		go l.handleConnection(ctx, conn)
	}
}

// handleConnection wraps a connection and calls the handler.
func (l *Listener) handleConnection(ctx context.Context, netConn net.Conn) {
	defer l.wg.Done()

	conn := NewConnection(netConn, l.connCfg)

	conn.Logger().Info("connection accepted")

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	connCtx = logging.NewContext(connCtx, conn.Logger())

	if l.handler != nil {
		l.handler(connCtx, conn)
	}

	_ = conn.Close()
	conn.Logger().Info("connection finished")
}

// Close stops the listener from accepting new connections.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.listener != nil {
		return l.listener.Close()
	}
	return nil
}

// Address returns the listener's address.
func (l *Listener) Address() string {
	return l.address
}

// BoundAddr returns the address the listener is actually bound to, which
// differs from Address when the configured port is 0.
func (l *Listener) BoundAddr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Mode returns the listener's mode.
func (l *Listener) Mode() config.ListenerMode {
	return l.mode
}
