package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDataClientContract runs a suite of tests to verify that a DataClient implementation
// adheres to the defined interface contract. The table must already exist.
func RunDataClientContract(t *testing.T, client DataClient, table string) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	insert := func(t *testing.T, sid string, created int64, data string) {
		t.Helper()
		err := client.Insert(ctx, table, domain.Record{SessionID: sid, TimeCreated: created, SessionData: data}.Row())
		require.NoError(t, err, "Insert should not return error")
	}
	latest := func(sid string) domain.Query {
		return domain.Query{
			Table:   table,
			Column:  domain.ColumnSessionData,
			Where:   []domain.Condition{domain.Eq(domain.ColumnSessionID, sid)},
			OrderBy: []domain.Order{{Column: domain.ColumnID, Desc: true}},
			Limit:   1,
		}
	}

	t.Run("Insert and Select Latest", func(t *testing.T) {
		sid := sessionID + "-latest"
		insert(t, sid, 1000, "first")
		insert(t, sid, 1000, "second")

		v, found, err := client.SelectValue(ctx, latest(sid))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "second", toString(v), "latest row is the one with the greatest id")
	})

	t.Run("Select Non-Existent", func(t *testing.T) {
		v, found, err := client.SelectValue(ctx, latest("non-existent-"+sessionID))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("Delete By Session", func(t *testing.T) {
		sid := sessionID + "-delete"
		other := sessionID + "-keep"
		insert(t, sid, 1000, "a")
		insert(t, sid, 1001, "b")
		insert(t, other, 1000, "c")

		n, err := client.Delete(ctx, table, domain.Eq(domain.ColumnSessionID, sid))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, found, err := client.SelectValue(ctx, latest(sid))
		require.NoError(t, err)
		assert.False(t, found, "Select after Delete should find nothing")

		v, found, err := client.SelectValue(ctx, latest(other))
		require.NoError(t, err)
		assert.True(t, found, "other sessions must be untouched")
		assert.Equal(t, "c", toString(v))
	})

	t.Run("Delete With Comparison", func(t *testing.T) {
		sid := sessionID + "-prune"
		insert(t, sid, 2000, "old")
		insert(t, sid, 2005, "new")

		n, err := client.Delete(ctx, table,
			domain.Eq(domain.ColumnSessionID, sid),
			domain.Lt(domain.ColumnTimeCreated, int64(2005)),
		)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		v, found, err := client.SelectValue(ctx, latest(sid))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "new", toString(v))
	})

	t.Run("Delete Inclusive Cutoff", func(t *testing.T) {
		a := sessionID + "-gc-a"
		b := sessionID + "-gc-b"
		insert(t, a, 10, "expired")
		insert(t, b, 20, "boundary")
		insert(t, b, 21, "fresh")

		n, err := client.Delete(ctx, table, domain.Le(domain.ColumnTimeCreated, int64(20)))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, found, err := client.SelectValue(ctx, latest(a))
		require.NoError(t, err)
		assert.False(t, found)

		v, found, err := client.SelectValue(ctx, latest(b))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "fresh", toString(v))
	})

	t.Run("Reject Unsafe Identifiers", func(t *testing.T) {
		err := client.Insert(ctx, "bad-name!", domain.Row{domain.ColumnSessionID: "x"})
		assert.ErrorIs(t, err, domain.ErrQuery)

		_, err = client.Delete(ctx, table, domain.Condition{Column: "id; --", Op: domain.OpEq, Value: 1})
		assert.ErrorIs(t, err, domain.ErrQuery)

		_, _, err = client.SelectValue(ctx, domain.Query{Table: table, Column: "*"})
		assert.ErrorIs(t, err, domain.ErrQuery)
	})
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}
