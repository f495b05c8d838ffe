package collector_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tablesession/pkg/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGC struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakeGC) GC(ctx context.Context, maxAge time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, maxAge)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func (f *fakeGC) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestCollector_RunOnce(t *testing.T) {
	gc := &fakeGC{}
	c := collector.New(gc, collector.WithMaxAge(time.Hour))

	n, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []time.Duration{time.Hour}, gc.calls)
}

func TestCollector_RunOnceError(t *testing.T) {
	gc := &fakeGC{err: errors.New("locked")}
	c := collector.New(gc)

	_, err := c.RunOnce(context.Background())
	assert.EqualError(t, err, "locked")
	assert.Equal(t, []time.Duration{collector.DefaultMaxAge}, gc.calls)
}

func TestCollector_Schedule(t *testing.T) {
	gc := &fakeGC{}
	c := collector.New(gc, collector.WithSchedule("@every 1s"))

	require.NoError(t, c.Start())
	assert.Error(t, c.Start(), "double start is rejected")

	assert.Eventually(t, func() bool { return gc.count() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
	assert.Error(t, c.Stop(ctx), "double stop is rejected")
}

func TestCollector_InvalidSchedule(t *testing.T) {
	c := collector.New(&fakeGC{}, collector.WithSchedule("every tuesday"))
	assert.Error(t, c.Start())

	_, err := collector.ParseSchedule("*/5 * * * *")
	assert.NoError(t, err)
}
