package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyMigrations_TemplatedOncePerScope(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE {{.Table}} (id INTEGER);\n-- +migrate Down\nDROP TABLE {{.Table}};\n")},
		"README.md":     {Data: []byte("ignored")},
	}

	require.NoError(t, ApplyMigrations(ctx, db, fsys, ".", "alpha", map[string]string{"Table": "alpha"}))
	// Re-applying is a no-op thanks to the ledger
	require.NoError(t, ApplyMigrations(ctx, db, fsys, ".", "alpha", map[string]string{"Table": "alpha"}))
	require.NoError(t, ApplyMigrations(ctx, db, fsys, ".", "beta", map[string]string{"Table": "beta"}))

	for _, table := range []string{"alpha", "beta"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestApplyMigrations_MissingTemplateKey(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{
		"0001_init.sql": {Data: []byte("CREATE TABLE {{.Table}} (id INTEGER);")},
	}
	err := ApplyMigrations(context.Background(), db, fsys, ".", "x", map[string]string{})
	assert.Error(t, err)
}

func TestApplyMigrations_RequiresDB(t *testing.T) {
	err := ApplyMigrations(context.Background(), nil, fstest.MapFS{}, ".", "", nil)
	assert.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	assert.Equal(t, "\nUP\n", ExtractUpMigration("-- +migrate Up\nUP\n-- +migrate Down\nDOWN"))
	assert.Equal(t, "PLAIN", ExtractUpMigration("PLAIN"))
	assert.Equal(t, "\nUP", ExtractUpMigration("-- +migrate Up\nUP"))
}
