package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/tablesession/pkg/adapters/memory"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/aretw0/tablesession/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SpyClient counts calls and injects failures on top of the memory client.
type SpyClient struct {
	*memory.Client
	Selects, Inserts, Deletes int

	SelectErr, InsertErr, DeleteErr error
}

func NewSpyClient() *SpyClient {
	return &SpyClient{Client: memory.NewClient()}
}

func (c *SpyClient) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	c.Selects++
	if c.SelectErr != nil {
		return nil, false, c.SelectErr
	}
	return c.Client.SelectValue(ctx, q)
}

func (c *SpyClient) Insert(ctx context.Context, table string, row domain.Row) error {
	c.Inserts++
	if c.InsertErr != nil {
		return c.InsertErr
	}
	return c.Client.Insert(ctx, table, row)
}

func (c *SpyClient) Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error) {
	c.Deletes++
	if c.DeleteErr != nil {
		return 0, c.DeleteErr
	}
	return c.Client.Delete(ctx, table, where...)
}

// maxDraw is the largest value of the (0, 1] draw: it prunes only at probability 1.
func maxDraw() float64 { return 1 }
func halfDraw() float64 { return 0.5 }

func newStore(t *testing.T, client ports.DataClient, opts ...session.Option) *session.Store {
	t.Helper()
	store, err := session.NewStore(client, "sessions", opts...)
	require.NoError(t, err)
	return store
}

func TestStore_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()

	payloads := []string{"", "a|s:1:\"b\";", "\x00\x01binary\xff", "ünïcødé"}
	for _, p := range payloads {
		writer := newStore(t, client, session.WithRandom(maxDraw))
		require.NoError(t, writer.Write(ctx, "sid", p))

		reader := newStore(t, client)
		got, err := reader.Read(ctx, "sid")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestStore_ReadMissingSessionIsEmpty(t *testing.T) {
	store := newStore(t, NewSpyClient())

	got, err := store.Read(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestStore_LazyWrite(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	store := newStore(t, client, session.WithRandom(maxDraw))

	require.NoError(t, store.Write(ctx, "sid", "same"))
	require.NoError(t, store.Write(ctx, "sid", "same"))

	assert.Equal(t, 1, client.Inserts)
	assert.Len(t, client.Rows("sessions"), 1)
}

func TestStore_ReadPrimesLazyWrite(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	require.NoError(t, newStore(t, client, session.WithRandom(maxDraw)).Write(ctx, "sid", "payload"))

	store := newStore(t, client)
	_, err := store.Read(ctx, "sid")
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "sid", "payload"))
	assert.Equal(t, 1, client.Inserts, "unchanged payload after read must not be rewritten")
}

func TestStore_EmptyPayloadIsWrittenOnFreshStore(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	store := newStore(t, client, session.WithRandom(maxDraw))

	require.NoError(t, store.Write(ctx, "sid", ""))
	assert.Equal(t, 1, client.Inserts)
}

func TestStore_ReadCorruptedData(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	require.NoError(t, client.Insert(ctx, "sessions", domain.Row{
		domain.ColumnSessionID:   "sid",
		domain.ColumnTimeCreated: int64(1),
		domain.ColumnSessionData: "!!not base64!!",
	}))

	_, err := newStore(t, client).Read(ctx, "sid")
	assert.ErrorIs(t, err, domain.ErrCorruptedData)

	var corrupted *domain.CorruptedDataError
	require.ErrorAs(t, err, &corrupted)
	assert.Equal(t, "sid", corrupted.SessionID)
}

func TestStore_DestroyThenRead(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	store := newStore(t, client, session.WithRandom(maxDraw))

	require.NoError(t, store.Write(ctx, "sid", "A"))
	require.NoError(t, store.Write(ctx, "sid", "B"))
	require.NoError(t, store.Write(ctx, "other", "C"))
	require.NoError(t, store.Destroy(ctx, "sid"))

	got, err := store.Read(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = store.Read(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "C", got)
}

func TestStore_DestroyResetsLazyWriteCache(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	store := newStore(t, client, session.WithRandom(maxDraw))

	require.NoError(t, store.Write(ctx, "sid", "A"))
	require.NoError(t, store.Destroy(ctx, "sid"))
	require.NoError(t, store.Write(ctx, "sid", "A"))

	assert.Equal(t, 2, client.Inserts)
}

func TestStore_PruneScenario(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	now := int64(100)
	store := newStore(t, client,
		session.WithClock(func() int64 { return now }),
		session.WithCleanupProbability(1.0),
		session.WithRandom(maxDraw),
	)

	require.NoError(t, store.Write(ctx, "sid1", "A"))
	rows := client.Rows("sessions")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0][domain.ColumnTimeCreated])
	assert.Equal(t, "sid1", rows[0][domain.ColumnSessionID])
	assert.Equal(t, "QQ==", rows[0][domain.ColumnSessionData])

	now = 105
	require.NoError(t, store.Write(ctx, "sid1", "B"))
	rows = client.Rows("sessions")
	require.Len(t, rows, 1, "first row is pruned with cleanup rate 1.0")
	assert.Equal(t, int64(105), rows[0][domain.ColumnTimeCreated])

	got, err := newStore(t, client).Read(ctx, "sid1")
	require.NoError(t, err)
	assert.Equal(t, "B", got)
}

func TestStore_PruneKeepsRowsOfSameSecond(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	store := newStore(t, client,
		session.WithClock(ports.FixedClock(100)),
		session.WithCleanupProbability(1.0),
	)

	require.NoError(t, store.Write(ctx, "sid", "A"))
	require.NoError(t, store.Write(ctx, "sid", "B"))

	assert.Len(t, client.Rows("sessions"), 2, "pruning only removes strictly older rows")
}

func TestStore_PruneProbability(t *testing.T) {
	ctx := context.Background()

	t.Run("zero never prunes", func(t *testing.T) {
		client := NewSpyClient()
		store := newStore(t, client, session.WithCleanupProbability(0), session.WithRandom(func() float64 { return 1e-12 }))
		require.NoError(t, store.Write(ctx, "sid", "A"))
		assert.Equal(t, 0, client.Deletes)
	})

	t.Run("draw above rate skips", func(t *testing.T) {
		client := NewSpyClient()
		store := newStore(t, client, session.WithCleanupProbability(0.2), session.WithRandom(func() float64 { return 0.21 }))
		require.NoError(t, store.Write(ctx, "sid", "A"))
		assert.Equal(t, 0, client.Deletes)
	})

	t.Run("draw at rate prunes", func(t *testing.T) {
		client := NewSpyClient()
		store := newStore(t, client, session.WithCleanupProbability(0.2), session.WithRandom(func() float64 { return 0.2 }))
		require.NoError(t, store.Write(ctx, "sid", "A"))
		assert.Equal(t, 1, client.Deletes)
	})
}

func TestStore_PruneFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	client.DeleteErr = errors.New("database is locked")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := newStore(t, client,
		session.WithCleanupProbability(1),
		session.WithRandom(halfDraw),
		session.WithLogger(logger),
	)

	assert.NoError(t, store.Write(ctx, "sid", "A"))
	assert.Equal(t, 1, client.Deletes)
	assert.Contains(t, buf.String(), "database is locked")

	got, err := store.Read(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

func TestStore_GC(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	now := int64(0)
	store := newStore(t, client, session.WithClock(func() int64 { return now }), session.WithRandom(maxDraw))

	for _, w := range []struct {
		at   int64
		sid  string
		data string
	}{
		{100, "a", "a1"},
		{200, "b", "b1"},
		{300, "a", "a2"},
		{301, "c", "c1"},
	} {
		now = w.at
		require.NoError(t, store.Write(ctx, w.sid, w.data))
	}

	now = 400
	n, err := store.GC(ctx, 100*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "rows at or before the cutoff (300) are removed")

	rows := client.Rows("sessions")
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0][domain.ColumnSessionID])
}

func TestStore_ConfigurationErrors(t *testing.T) {
	client := NewSpyClient()

	_, err := session.NewStore(client, "bad-name!")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "table", cfgErr.Field)
	assert.Zero(t, client.Selects+client.Inserts+client.Deletes, "no store call before validation")

	_, err = session.NewStore(client, "sessions", session.WithCleanupProbability(1.5))
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = session.NewStore(nil, "sessions")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStore_StoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	cause := &domain.QueryError{Op: "insert", Table: "sessions", Err: errors.New("disk I/O error")}

	client := NewSpyClient()
	client.SelectErr = cause
	client.InsertErr = cause
	client.DeleteErr = cause
	store := newStore(t, client, session.WithRandom(maxDraw))

	_, err := store.Read(ctx, "sid")
	assertStoreFailure(t, err, "read", cause)

	err = store.Write(ctx, "sid", "A")
	assertStoreFailure(t, err, "write", cause)
	assert.Equal(t, 0, client.Deletes, "prune does not run after a failed insert")

	err = store.Destroy(ctx, "sid")
	assertStoreFailure(t, err, "destroy", cause)

	_, err = store.GC(ctx, time.Hour)
	assertStoreFailure(t, err, "gc", cause)
}

func TestStore_FailedWriteIsRetriedWithSamePayload(t *testing.T) {
	ctx := context.Background()
	client := NewSpyClient()
	client.InsertErr = errors.New("temporary")
	store := newStore(t, client, session.WithRandom(maxDraw))

	require.Error(t, store.Write(ctx, "sid", "A"))
	client.InsertErr = nil
	require.NoError(t, store.Write(ctx, "sid", "A"))

	assert.Len(t, client.Rows("sessions"), 1)
}

func TestStore_OpenCloseAreNoops(t *testing.T) {
	client := NewSpyClient()
	store := newStore(t, client)
	ctx := context.Background()

	assert.NoError(t, store.Open(ctx, "/tmp", "PHPSESSID"))
	assert.NoError(t, store.Close(ctx))
	assert.Zero(t, client.Selects+client.Inserts+client.Deletes)
}

func assertStoreFailure(t *testing.T, err error, op string, cause error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, cause)

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, op, storeErr.Op)
}
