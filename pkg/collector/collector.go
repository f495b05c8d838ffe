// Package collector runs session garbage collection on a cron schedule.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tablesession/internal/logging"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultSchedule runs a collection every ten minutes.
	DefaultSchedule = "@every 10m"
	// DefaultMaxAge matches the customary 1440 second session lifetime.
	DefaultMaxAge = 1440 * time.Second
)

// GarbageCollector removes expired session rows.
type GarbageCollector interface {
	GC(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Collector periodically invokes a GarbageCollector.
type Collector struct {
	gc       GarbageCollector
	schedule string
	maxAge   time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// Option configures the Collector.
type Option func(*Collector)

// WithSchedule sets a standard 5-field cron expression or a descriptor such as "@every 1h".
func WithSchedule(spec string) Option {
	return func(c *Collector) {
		c.schedule = spec
	}
}

// WithMaxAge sets the retention window passed to GC.
func WithMaxAge(d time.Duration) Option {
	return func(c *Collector) {
		c.maxAge = d
	}
}

// WithTimeout bounds a single collection. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) {
		c.timeout = d
	}
}

// WithLogger configures a logger for collection results.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a stopped Collector.
func New(gc GarbageCollector, opts ...Option) *Collector {
	c := &Collector{
		gc:       gc,
		schedule: DefaultSchedule,
		maxAge:   DefaultMaxAge,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseSchedule validates a schedule accepted by WithSchedule.
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Start validates the schedule and begins running collections in the background.
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("collector is already running")
	}
	sched, err := ParseSchedule(c.schedule)
	if err != nil {
		return err
	}

	c.cron = cron.New(
		cron.WithLogger(cron.PrintfLogger(slog.NewLogLogger(c.logger.Handler(), slog.LevelDebug))),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.cron.Schedule(sched, cron.FuncJob(func() {
		_, _ = c.RunOnce(context.Background())
	}))
	c.cron.Start()
	c.running = true

	c.logger.Info("Session collector started", "schedule", c.schedule, "max_age", c.maxAge)
	return nil
}

// Stop halts the schedule and waits for a running collection or ctx, whichever ends first.
func (c *Collector) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return fmt.Errorf("collector is not running")
	}
	done := c.cron.Stop()
	c.running = false
	c.mu.Unlock()

	select {
	case <-done.Done():
		c.logger.Info("Session collector stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single collection. Failures are logged and returned.
func (c *Collector) RunOnce(ctx context.Context) (int64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := c.gc.GC(ctx, c.maxAge)
	if err != nil {
		c.logger.Error("Session collection failed", "err", err)
		return 0, err
	}
	c.logger.Info("Session collection finished",
		"rows", n,
		"max_age", c.maxAge,
		"duration", time.Since(start),
	)
	return n, nil
}
