package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
)

// NewLoggingMiddleware logs every operation of the wrapped client at Debug level.
// Payload values are never logged.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.DataClient) ports.DataClient {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

type loggingMiddleware struct {
	next   ports.DataClient
	logger *slog.Logger
}

func (m *loggingMiddleware) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	start := time.Now()
	v, found, err := m.next.SelectValue(ctx, q)
	m.logger.DebugContext(ctx, "Select",
		"table", q.Table,
		"conditions", len(q.Where),
		"found", found,
		"duration", time.Since(start),
		"err", err,
	)
	return v, found, err
}

func (m *loggingMiddleware) Insert(ctx context.Context, table string, row domain.Row) error {
	start := time.Now()
	err := m.next.Insert(ctx, table, row)
	m.logger.DebugContext(ctx, "Insert",
		"table", table,
		"session_id", row[domain.ColumnSessionID],
		"duration", time.Since(start),
		"err", err,
	)
	return err
}

func (m *loggingMiddleware) Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error) {
	start := time.Now()
	n, err := m.next.Delete(ctx, table, where...)
	m.logger.DebugContext(ctx, "Delete",
		"table", table,
		"conditions", len(where),
		"rows", n,
		"duration", time.Since(start),
		"err", err,
	)
	return n, err
}
