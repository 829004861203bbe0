package server

import (
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/quipchat/quipd/internal/logging"
)

// Connection wraps a net.Conn with a connection-scoped logger and optional
// transaction logging. It implements io.ReadWriteCloser; the session layer
// does its own buffering and framing on top.
type Connection struct {
	conn   net.Conn
	r      io.Reader
	w      io.Writer
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// ConnectionConfig holds configuration for a new connection.
type ConnectionConfig struct {
	LogTransaction bool
	Logger         *slog.Logger
}

// NewConnection creates a new Connection wrapper.
func NewConnection(conn net.Conn, cfg ConnectionConfig) *Connection {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	connLogger := logging.WithConnection(logger, conn.RemoteAddr().String())

	c := &Connection{
		conn:   conn,
		logger: connLogger,
	}

	var r io.Reader = conn
	var w io.Writer = conn
	if cfg.LogTransaction {
		r = logging.NewTransactionReader(conn, connLogger, "recv")
		w = logging.NewTransactionWriter(conn, connLogger, "send")
	}
	c.r = r
	c.w = w

	return c
}

// Read reads from the connection, through the transaction logger when enabled.
func (c *Connection) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Write writes to the connection, through the transaction logger when enabled.
func (c *Connection) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Close closes the connection. Safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.logger.Debug("connection closed")
	return c.conn.Close()
}

// IsClosed returns true if the connection has been closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Logger returns the connection-scoped logger.
func (c *Connection) Logger() *slog.Logger {
	return c.logger
}

// RemoteAddr returns the remote address of the connection.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr returns the local address of the connection.
func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// IsTLS returns true if the connection is encrypted with TLS.
func (c *Connection) IsTLS() bool {
	_, ok := c.conn.(*tls.Conn)
	return ok
}

// Underlying returns the underlying net.Conn.
// Use with caution; prefer the Connection methods.
func (c *Connection) Underlying() net.Conn {
	return c.conn
}
