package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/tablesession/pkg/adapters/memory"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/persistence/middleware"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenClient fails every operation.
type brokenClient struct{}

func (brokenClient) SelectValue(context.Context, domain.Query) (any, bool, error) {
	return nil, false, errors.New("broken")
}
func (brokenClient) Insert(context.Context, string, domain.Row) error { return errors.New("broken") }
func (brokenClient) Delete(context.Context, string, ...domain.Condition) (int64, error) {
	return 0, errors.New("broken")
}

var _ ports.DataClient = brokenClient{}

func TestMetricsMiddleware_Contract(t *testing.T) {
	metrics := middleware.NewMetrics(prometheus.NewRegistry())
	client := middleware.NewMetricsMiddleware(metrics)(memory.NewClient())
	ports.RunDataClientContract(t, client, domain.DefaultTable)

	assert.Greater(t, testutil.ToFloat64(metrics.Operations.WithLabelValues("insert", "ok")), 0.0)
	assert.Greater(t, testutil.ToFloat64(metrics.Operations.WithLabelValues("insert", "error")), 0.0, "unsafe identifiers are counted as errors")
}

func TestMetricsMiddleware_CountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)
	ctx := context.Background()

	ok := middleware.NewMetricsMiddleware(metrics)(memory.NewClient())
	require.NoError(t, ok.Insert(ctx, "sessions", domain.Row{domain.ColumnSessionID: "sid"}))
	_, _ = ok.Delete(ctx, "sessions", domain.Eq(domain.ColumnSessionID, "sid"))

	bad := middleware.NewMetricsMiddleware(metrics)(brokenClient{})
	_, _, err := bad.SelectValue(ctx, domain.Query{Table: "sessions", Column: domain.ColumnSessionData})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("select", "error")))

	count, err := testutil.GatherAndCount(reg, "tablesession_client_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := middleware.NewLoggingMiddleware(logger)(memory.NewClient())
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "sessions", domain.Row{domain.ColumnSessionID: "sid", domain.ColumnSessionData: "c2VjcmV0"}))

	out := buf.String()
	assert.Contains(t, out, "msg=Insert")
	assert.Contains(t, out, "session_id=sid")
	assert.NotContains(t, out, "c2VjcmV0", "payloads must not be logged")
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.DataClient) ports.DataClient {
			return &recording{DataClient: next, name: name, calls: &calls}
		}
	}

	client := middleware.Chain(memory.NewClient(), tag("outer"), tag("inner"))
	require.NoError(t, client.Insert(context.Background(), "sessions", domain.Row{domain.ColumnSessionID: "sid"}))

	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type recording struct {
	ports.DataClient
	name  string
	calls *[]string
}

func (r *recording) Insert(ctx context.Context, table string, row domain.Row) error {
	*r.calls = append(*r.calls, r.name)
	return r.DataClient.Insert(ctx, table, row)
}
