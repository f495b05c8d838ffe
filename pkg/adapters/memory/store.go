package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/aretw0/tablesession/pkg/domain"
)

// Client implements ports.DataClient in memory.
// Safe for concurrent use.
type Client struct {
	tables map[string]*table
	mu     sync.RWMutex
}

type table struct {
	seq  int64
	rows []domain.Row
}

// NewClient creates a new in-memory client. Tables are created on first insert.
func NewClient() *Client {
	return &Client{
		tables: make(map[string]*table),
	}
}

// SelectValue returns q.Column from the first matching row after ordering.
func (c *Client) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	if err := q.Validate(); err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[q.Table]
	if !ok {
		return nil, false, nil
	}
	v, found, err := domain.FirstValue(t.rows, q)
	if err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}
	return v, found, nil
}

// Insert appends a copy of row and assigns the next id.
func (c *Client) Insert(ctx context.Context, tableName string, row domain.Row) error {
	if err := validateRow(tableName, row); err != nil {
		return domain.NewQueryError("insert", tableName, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewQueryError("insert", tableName, err)
	}

	// Copy so the caller can't mutate stored rows through the map
	stored := maps.Clone(row)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[tableName]
	if !ok {
		t = &table{}
		c.tables[tableName] = t
	}
	t.seq++
	stored[domain.ColumnID] = t.seq
	t.rows = append(t.rows, stored)
	return nil
}

// Delete removes every row matching all conditions.
func (c *Client) Delete(ctx context.Context, tableName string, where ...domain.Condition) (int64, error) {
	if !domain.ValidIdentifier(tableName) {
		return 0, domain.NewQueryError("delete", tableName, fmt.Errorf("invalid table %q", tableName))
	}
	for _, cond := range where {
		if err := cond.Validate(); err != nil {
			return 0, domain.NewQueryError("delete", tableName, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, domain.NewQueryError("delete", tableName, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[tableName]
	if !ok {
		return 0, nil
	}

	// Match every row before touching the slice so a failed comparison leaves the table intact.
	remove := make([]bool, len(t.rows))
	var removed int64
	for i, row := range t.rows {
		match, err := domain.MatchAll(row, where)
		if err != nil {
			return 0, domain.NewQueryError("delete", tableName, err)
		}
		if match {
			remove[i] = true
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	kept := make([]domain.Row, 0, len(t.rows)-int(removed))
	for i, row := range t.rows {
		if !remove[i] {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	return removed, nil
}

// Rows returns copies of every row of a table in insertion order.
func (c *Client) Rows(tableName string) []domain.Row {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]domain.Row, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, maps.Clone(row))
	}
	return out
}

func validateRow(tableName string, row domain.Row) error {
	if !domain.ValidIdentifier(tableName) {
		return fmt.Errorf("invalid table %q", tableName)
	}
	if len(row) == 0 {
		return fmt.Errorf("empty row")
	}
	for col := range row {
		if !domain.ValidIdentifier(col) {
			return fmt.Errorf("invalid column %q", col)
		}
	}
	return nil
}
