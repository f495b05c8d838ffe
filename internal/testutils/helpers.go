package testutils

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tablesession/pkg/adapters/redis"
	"github.com/aretw0/tablesession/pkg/adapters/sqlite"
	"github.com/stretchr/testify/require"
)

// SetupSQLite creates a SQLite database in a temporary directory with the
// given tables migrated. It is closed when the test ends.
func SetupSQLite(t *testing.T, tables ...string) *sqlite.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sessions.db")

	opts := make([]sqlite.Option, 0, len(tables))
	for _, table := range tables {
		opts = append(opts, sqlite.WithTable(table))
	}

	client, err := sqlite.Open(path, opts...)
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// SetupRedis starts an in-process Redis server and returns a client for it.
func SetupRedis(t *testing.T, opts ...redis.Option) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, opts...)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
