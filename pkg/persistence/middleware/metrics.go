package middleware

import (
	"context"
	"time"

	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the metrics middleware.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tablesession_client_operations_total",
				Help: "Total number of data client operations by result",
			},
			[]string{"op", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tablesession_client_operation_duration_seconds",
				Help:    "Duration of data client operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Duration)
	}
	return m
}

// NewMetricsMiddleware records operation counts and latencies of the wrapped client.
func NewMetricsMiddleware(m *Metrics) Middleware {
	return func(next ports.DataClient) ports.DataClient {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

type metricsMiddleware struct {
	next    ports.DataClient
	metrics *Metrics
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.metrics.Operations.WithLabelValues(op, result).Inc()
	m.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	start := time.Now()
	v, found, err := m.next.SelectValue(ctx, q)
	m.observe("select", start, err)
	return v, found, err
}

func (m *metricsMiddleware) Insert(ctx context.Context, table string, row domain.Row) error {
	start := time.Now()
	err := m.next.Insert(ctx, table, row)
	m.observe("insert", start, err)
	return err
}

func (m *metricsMiddleware) Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error) {
	start := time.Now()
	n, err := m.next.Delete(ctx, table, where...)
	m.observe("delete", start, err)
	return n, err
}
