package ports

import (
	"context"

	"github.com/aretw0/tablesession/pkg/domain"
)

// DataClient is the relational access contract consumed by the session store.
// Implementations must reject unsafe identifiers and return *domain.QueryError
// for every failure.
type DataClient interface {
	// SelectValue returns q.Column of the first row matching q after ordering.
	// found is false when no row matches.
	SelectValue(ctx context.Context, q domain.Query) (value any, found bool, err error)

	// Insert appends a row. The surrogate key is assigned by storage.
	Insert(ctx context.Context, table string, row domain.Row) error

	// Delete removes every row matching all conditions and reports how many were removed.
	Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error)
}
