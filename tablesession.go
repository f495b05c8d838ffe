package tablesession

import (
	"github.com/aretw0/tablesession/pkg/adapters/memory"
	"github.com/aretw0/tablesession/pkg/adapters/sqlite"
	"github.com/aretw0/tablesession/pkg/session"
)

// Version is the release of the module reported by the CLI.
const Version = "0.1.0"

// NewMemoryStore returns a store over a fresh in-memory client.
func NewMemoryStore(table string, opts ...session.Option) (*session.Store, error) {
	return session.NewStore(memory.NewClient(), table, opts...)
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path and
// returns a store over table. The caller closes the returned client.
func NewSQLiteStore(path, table string, opts ...session.Option) (*session.Store, *sqlite.Client, error) {
	client, err := sqlite.Open(path, sqlite.WithTable(table))
	if err != nil {
		return nil, nil, err
	}
	store, err := session.NewStore(client, table, opts...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client, nil
}
