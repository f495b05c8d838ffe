package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	sqlitemigrate "github.com/aretw0/tablesession/internal/sqlitemigrate"
	"github.com/aretw0/tablesession/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/tablesession/pkg/domain"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Client implements ports.DataClient on a SQL database using "?" placeholders.
// Safe for concurrent use.
type Client struct {
	sqlDB *sql.DB
}

type options struct {
	tables []string
}

// Option configures Open.
type Option func(*options)

// WithTable adds a session table to migrate on Open. The default table is
// migrated when no table is given.
func WithTable(name string) Option {
	return func(o *options) {
		o.tables = append(o.tables, name)
	}
}

// Open opens and migrates a SQLite database at path.
func Open(path string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.tables) == 0 {
		o.tables = []string{domain.DefaultTable}
	}
	for _, table := range o.tables {
		if !domain.ValidIdentifier(table) {
			return nil, &domain.ConfigurationError{Field: "table", Value: table, Reason: "must match [A-Za-z0-9_]+"}
		}
	}

	dsn := path
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	client := &Client{sqlDB: sqlDB}
	for _, table := range o.tables {
		if err := client.EnsureTable(context.Background(), table); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return client, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// EnsureTable creates a session table and its indexes if they are missing.
func (c *Client) EnsureTable(ctx context.Context, table string) error {
	if !domain.ValidIdentifier(table) {
		return &domain.ConfigurationError{Field: "table", Value: table, Reason: "must match [A-Za-z0-9_]+"}
	}
	data := struct{ Table string }{Table: table}
	if err := sqlitemigrate.ApplyMigrations(ctx, c.sqlDB, migrations.FS, ".", table, data); err != nil {
		return fmt.Errorf("run migrations for %s: %w", table, err)
	}
	return nil
}

// SelectValue returns q.Column of the first row matching q after ordering.
func (c *Client) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	stmt, args, err := buildSelect(q)
	if err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}

	var value any
	if err := c.sqlDB.QueryRowContext(ctx, stmt, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}
	return value, true, nil
}

// Insert appends a row.
func (c *Client) Insert(ctx context.Context, table string, row domain.Row) error {
	stmt, args, err := buildInsert(table, row)
	if err != nil {
		return domain.NewQueryError("insert", table, err)
	}
	if _, err := c.sqlDB.ExecContext(ctx, stmt, args...); err != nil {
		return domain.NewQueryError("insert", table, err)
	}
	return nil
}

// Delete removes every row matching all conditions.
func (c *Client) Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error) {
	stmt, args, err := buildDelete(table, where)
	if err != nil {
		return 0, domain.NewQueryError("delete", table, err)
	}
	res, err := c.sqlDB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, domain.NewQueryError("delete", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewQueryError("delete", table, err)
	}
	return n, nil
}

func buildSelect(q domain.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.Column)
	b.WriteString(" FROM ")
	b.WriteString(q.Table)
	args := writeWhere(&b, q.Where)

	if len(q.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.Column)
			if o.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.Itoa(limit))
	return b.String(), args, nil
}

func buildInsert(table string, row domain.Row) (string, []any, error) {
	if !domain.ValidIdentifier(table) {
		return "", nil, fmt.Errorf("invalid table %q", table)
	}
	if len(row) == 0 {
		return "", nil, fmt.Errorf("empty row")
	}

	columns := make([]string, 0, len(row))
	for col := range row {
		if !domain.ValidIdentifier(col) {
			return "", nil, fmt.Errorf("invalid column %q", col)
		}
		columns = append(columns, col)
	}
	slices.Sort(columns)

	args := make([]any, 0, len(columns))
	for _, col := range columns {
		args = append(args, row[col])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	return stmt, args, nil
}

func buildDelete(table string, where []domain.Condition) (string, []any, error) {
	if !domain.ValidIdentifier(table) {
		return "", nil, fmt.Errorf("invalid table %q", table)
	}
	for _, cond := range where {
		if err := cond.Validate(); err != nil {
			return "", nil, err
		}
	}

	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	args := writeWhere(&b, where)
	return b.String(), args, nil
}

// writeWhere appends a WHERE clause built from validated conditions.
func writeWhere(b *strings.Builder, where []domain.Condition) []any {
	if len(where) == 0 {
		return nil
	}
	args := make([]any, 0, len(where))
	b.WriteString(" WHERE ")
	for i, cond := range where {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(cond.Column)
		b.WriteString(" ")
		b.WriteString(string(cond.Op))
		b.WriteString(" ?")
		args = append(args, cond.Value)
	}
	return args
}
