package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tablesession/internal/config"
	"github.com/aretw0/tablesession/pkg/adapters/memory"
	"github.com/aretw0/tablesession/pkg/adapters/redis"
	"github.com/aretw0/tablesession/pkg/adapters/sqlite"
	"github.com/aretw0/tablesession/pkg/persistence/middleware"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/aretw0/tablesession/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Backend is a configured data client together with its metrics registry.
type Backend struct {
	Client   ports.DataClient
	Registry *prometheus.Registry
	Metrics  *middleware.Metrics

	cfg    config.Config
	logger *slog.Logger
	close  func() error
}

// OpenBackend connects the driver selected by cfg and wraps it with the
// metrics and logging middlewares.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	var (
		client ports.DataClient
		closer = func() error { return nil }
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		c, err := sqlite.Open(cfg.SQLitePath, sqlite.WithTable(cfg.Table))
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		client, closer = c, c.Close
	case config.DriverRedis:
		c := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connect redis backend: %w", err)
		}
		client, closer = c, c.Close
	case config.DriverMemory:
		client = memory.NewClient()
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	logger.Debug("Backend opened", "driver", cfg.Driver, "table", cfg.Table)

	return &Backend{
		Client: middleware.Chain(client,
			middleware.NewMetricsMiddleware(metrics),
			middleware.NewLoggingMiddleware(logger),
		),
		Registry: registry,
		Metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		close:    closer,
	}, nil
}

// NewStore builds a session store over the backend. Stores are cheap and
// carry per-request state, so callers create one per unit of work.
func (b *Backend) NewStore() (*session.Store, error) {
	return session.NewStore(b.Client, b.cfg.Table,
		session.WithCleanupProbability(b.cfg.CleanupProbability),
		session.WithLogger(b.logger),
	)
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	return b.close()
}

// Config returns the configuration the backend was opened with.
func (b *Backend) Config() config.Config {
	return b.cfg
}
