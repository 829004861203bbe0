package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/quipchat/quipd/internal/logging"
	"github.com/quipchat/quipd/internal/metrics"
	"github.com/quipchat/quipd/internal/wire"
)

// SessionConfig holds per-session settings.
type SessionConfig struct {
	// MaxLineLength bounds one wire frame; <= 0 selects the wire default.
	MaxLineLength int
	Logger        *slog.Logger
	Metrics       metrics.Collector
}

// Session drives one accepted connection through the unauthenticated loop
// and, after a successful login, the authenticated reader/writer pair.
type Session struct {
	registry *Registry
	conn     io.ReadWriteCloser
	reader   *wire.Reader
	writer   *wire.Writer
	logger   *slog.Logger
	metrics  metrics.Collector
}

// NewSession builds a session over an accepted duplex stream.
func NewSession(registry *Registry, conn io.ReadWriteCloser, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}

	return &Session{
		registry: registry,
		conn:     conn,
		reader:   wire.NewReader(conn, cfg.MaxLineLength),
		writer:   wire.NewWriter(conn),
		logger:   logger,
		metrics:  collector,
	}
}

// Run drives the session until logout, peer close, or a transport error. It
// returns nil on normal closure; transport faults surface so the caller can
// log them. The connection is closed before Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()
	defer s.conn.Close()

	// Server shutdown unblocks a session parked in a read.
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	box, err := s.unauth(ctx)
	if err != nil {
		return normalClosure(err)
	}

	err = s.auth(ctx, box)
	return normalClosure(err)
}

// unauth loops over framed requests until a successful Login hands back the
// bound mailbox. Only Login, Logout, and Nop are legal here.
func (s *Session) unauth(ctx context.Context) (*Mailbox, error) {
	for {
		req, err := s.reader.ReadRequest()
		if err != nil {
			if pe, ok := wire.AsParseError(err); ok {
				s.metrics.ParseError()
				if werr := s.writer.WriteResponse(wire.NewError(pe.Tag, wire.CodeBadCommand)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, err
		}

		s.metrics.CommandProcessed(req.Body.Verb())

		switch b := req.Body.(type) {
		case wire.Login:
			box, err := s.registry.Load(b.Name, b.Password)
			if err != nil {
				s.metrics.LoginAttempt(loginResult(err))
				s.logger.Info("login rejected",
					slog.String("name", b.Name),
					slog.String("reason", err.Error()),
				)
				if werr := s.writer.WriteResponse(wire.NewError(req.Tag, ErrorCode(err))); werr != nil {
					return nil, werr
				}
				continue
			}
			s.metrics.LoginAttempt("success")
			// The handshake ack goes through the mailbox, not the wire:
			// the writer task delivers it after anything buffered while
			// the user was offline, keeping FIFO order per mailbox.
			box.Push(wire.NewSuccess(req.Tag, b.Name))
			return box, nil

		case wire.Logout:
			return nil, wire.ErrDisconnect

		case wire.Nop:
			if err := s.writer.WriteResponse(wire.NewSuccess(req.Tag, "")); err != nil {
				return nil, err
			}

		default:
			if err := s.writer.WriteResponse(wire.NewError(req.Tag, wire.CodeUnauthorized)); err != nil {
				return nil, err
			}
		}
	}
}

// auth runs the reader and writer tasks over the shared mailbox. When either
// ends, the other is cancelled and the connection closed to unblock it; the
// mailbox is unloaded on the way out.
func (s *Session) auth(ctx context.Context, box *Mailbox) error {
	logger := logging.WithUser(s.logger, box.Name())
	logger.Info("user logged in")

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { _ = s.conn.Close() })
	defer stop()

	g.Go(func() error { return s.readLoop(box) })
	g.Go(func() error { return s.writeLoop(gctx, box) })

	err := g.Wait()
	s.registry.Unload(box.Name())
	logger.Info("user logged out", slog.String("name", box.Name()))
	return err
}

// readLoop converts inbound frames into routed effects. It never returns nil;
// logout and peer close surface as wire.ErrDisconnect.
func (s *Session) readLoop(box *Mailbox) error {
	for {
		req, err := s.reader.ReadRequest()
		if err != nil {
			if pe, ok := wire.AsParseError(err); ok {
				s.metrics.ParseError()
				box.Push(wire.NewError(pe.Tag, wire.CodeBadCommand))
				continue
			}
			return err
		}

		s.metrics.CommandProcessed(req.Body.Verb())

		switch b := req.Body.(type) {
		case wire.Send:
			s.route(box, req.Tag, b)
		case wire.SetName:
			s.rename(box, req.Tag, b.Name)
		case wire.Login:
			// Post-auth Login renames; the password operand is ignored.
			s.rename(box, req.Tag, b.Name)
		case wire.Logout:
			return wire.ErrDisconnect
		case wire.Nop:
			box.Push(wire.NewSuccess(req.Tag, ""))
		}
	}
}

// route delivers one Send. The receiver's mailbox is looked up fresh on every
// send; references are never cached across operations because the mailbox may
// be unloaded at any time.
func (s *Session) route(box *Mailbox, tag string, b wire.Send) {
	target, err := s.registry.Ensure(b.Receiver)
	if err != nil {
		box.Push(wire.NewError(tag, wire.CodeNotFound))
		return
	}

	if target.Status() == StatusCache {
		s.metrics.MessageBuffered()
	}
	target.Push(wire.NewRecv(box.Name(), b.Message))
	s.metrics.MessageRouted()
	box.Push(wire.NewSuccess(tag, b.Receiver))
}

func (s *Session) rename(box *Mailbox, tag, name string) {
	old := box.Name()
	if err := s.registry.Rename(old, name); err != nil {
		box.Push(wire.NewError(tag, ErrorCode(err)))
		return
	}
	if old != name {
		s.logger.Info("user renamed",
			slog.String("from", old),
			slog.String("to", name),
		)
	}
	box.Push(wire.NewSuccess(tag, name))
}

// writeLoop waits for the notifier and drains the mailbox to the wire. Exits
// on cancellation or a write error.
func (s *Session) writeLoop(ctx context.Context, box *Mailbox) error {
	for {
		if err := box.AwaitSignal(ctx); err != nil {
			return err
		}
		n, err := box.Drain(s.writer)
		if n > 0 {
			s.metrics.MessagesDelivered(n)
		}
		if err != nil {
			return err
		}
	}
}

// normalClosure filters the errors that mark an ordinary end of session.
func normalClosure(err error) error {
	switch {
	case err == nil,
		errors.Is(err, wire.ErrDisconnect),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "error"
}
