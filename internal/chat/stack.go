package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quipchat/quipd/internal/config"
	"github.com/quipchat/quipd/internal/logging"
	"github.com/quipchat/quipd/internal/metrics"
	"github.com/quipchat/quipd/internal/server"
	"github.com/quipchat/quipd/internal/userdir"
)

// Stack wires the broker together: configuration, user directory, registry,
// metrics. A failed directory load is fatal; the broker never starts with an
// empty or broken directory.
type Stack struct {
	Config        config.Config
	Logger        *slog.Logger
	Directory     *userdir.Directory
	Registry      *Registry
	Metrics       metrics.Collector
	MetricsServer metrics.Server
}

// NewStack validates cfg and loads the collaborators. The context bounds the
// directory load when the source is Redis.
func NewStack(ctx context.Context, cfg config.Config) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	var (
		dir *userdir.Directory
		err error
	)
	switch cfg.Users.Source {
	case config.SourceRedis:
		dir, err = userdir.LoadRedis(ctx, cfg.Users.RedisAddr, cfg.Users.RedisPassword, cfg.Users.RedisDB)
	default:
		dir, err = userdir.LoadFile(cfg.Users.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user directory: %w", err)
	}
	logger.Info("user directory loaded",
		slog.String("source", string(cfg.Users.Source)),
		slog.Int("users", dir.Len()),
		slog.Int("groups", len(dir.Groups())),
	)

	collector, metricsServer := metrics.New(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Address: cfg.Metrics.Address,
		Path:    cfg.Metrics.Path,
	})

	return &Stack{
		Config:        cfg,
		Logger:        logger,
		Directory:     dir,
		Registry:      NewRegistry(dir),
		Metrics:       collector,
		MetricsServer: metricsServer,
	}, nil
}

// Handle drives one accepted connection. It satisfies the server package's
// ConnectionHandler.
func (st *Stack) Handle(ctx context.Context, conn *server.Connection) {
	if conn.IsTLS() {
		st.Metrics.TLSConnectionEstablished()
	}

	sess := NewSession(st.Registry, conn, SessionConfig{
		MaxLineLength: st.Config.Limits.MaxLineLength,
		Logger:        conn.Logger(),
		Metrics:       st.Metrics,
	})

	if err := sess.Run(ctx); err != nil {
		conn.Logger().Warn("session error", slog.String("error", err.Error()))
	}
}
