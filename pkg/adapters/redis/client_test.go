package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tablesession/pkg/adapters/redis"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisClient_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunDataClientContract(t, client, domain.DefaultTable)
}

func TestRedisClient_ContractWithoutIndexes(t *testing.T) {
	_, client := setup(t, redis.WithIndexedColumns())
	ports.RunDataClientContract(t, client, domain.DefaultTable)
}

func TestRedisClient_Keys(t *testing.T) {
	mr, client := setup(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := client.Insert(ctx, "sessions", domain.Record{SessionID: "sid", TimeCreated: 100, SessionData: "QQ=="}.Row())
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:sessions:row:1"), "Expected row hash with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:sessions:rows"), "Expected row index to exist")
	assert.True(t, mr.Exists("custom:app:sessions:idx:session_id:s:sid"), "Expected equality index to exist")
	assert.Equal(t, "i:100", mr.HGet("custom:app:sessions:row:1", "time_created"))

	n, err := client.Delete(ctx, "sessions", domain.Eq(domain.ColumnSessionID, "sid"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.False(t, mr.Exists("custom:app:sessions:row:1"))
	assert.False(t, mr.Exists("custom:app:sessions:idx:session_id:s:sid"), "Empty index sets are removed by redis")
}

func TestRedisClient_NumericOrdering(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	// Ids 1..12 make sure "9" does not sort after "12"
	for i := 0; i < 12; i++ {
		err := client.Insert(ctx, "sessions", domain.Record{SessionID: "sid", TimeCreated: int64(i), SessionData: string(rune('a' + i))}.Row())
		require.NoError(t, err)
	}

	v, found, err := client.SelectValue(ctx, domain.Query{
		Table:   "sessions",
		Column:  domain.ColumnSessionData,
		Where:   []domain.Condition{domain.Eq(domain.ColumnSessionID, "sid")},
		OrderBy: []domain.Order{{Column: domain.ColumnID, Desc: true}},
		Limit:   1,
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "l", v)
}

func TestRedisClient_ConnectionFailure(t *testing.T) {
	mr, client := setup(t)
	mr.Close()

	err := client.Insert(context.Background(), "sessions", domain.Row{domain.ColumnSessionID: "sid"})
	assert.ErrorIs(t, err, domain.ErrQuery)
}
