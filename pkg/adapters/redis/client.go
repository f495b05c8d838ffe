package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/tablesession/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Client implements ports.DataClient on Redis.
//
// Each row is a hash at {prefix}{table}:row:{id}. Ids come from INCR on
// {prefix}{table}:seq and every id is kept in the {prefix}{table}:rows sorted
// set. Equality lookups on indexed columns go through per-value sorted sets,
// every other predicate is evaluated in process over the candidate rows.
type Client struct {
	client  *backend.Client
	prefix  string
	indexed []string
}

type Option func(*Client)

// WithPrefix sets the key prefix for tables.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// WithIndexedColumns sets the columns maintained in equality indexes.
func WithIndexedColumns(columns ...string) Option {
	return func(c *Client) {
		c.indexed = columns
	}
}

// New creates a new Redis client with options.
func New(address, password string, db int, opts ...Option) *Client {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis data client from an existing connection.
func NewFromClient(client *backend.Client, opts ...Option) *Client {
	c := &Client{
		client:  client,
		prefix:  "tablesession:",
		indexed: []string{domain.ColumnSessionID},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) seqKey(table string) string  { return c.prefix + table + ":seq" }
func (c *Client) rowsKey(table string) string { return c.prefix + table + ":rows" }

func (c *Client) rowKey(table string, id int64) string {
	return c.prefix + table + ":row:" + strconv.FormatInt(id, 10)
}

func (c *Client) indexKey(table, column, encoded string) string {
	return c.prefix + table + ":idx:" + column + ":" + encoded
}

func (c *Client) isIndexed(column string) bool {
	return slices.Contains(c.indexed, column)
}

// SelectValue returns q.Column of the first matching row after ordering.
func (c *Client) SelectValue(ctx context.Context, q domain.Query) (any, bool, error) {
	if err := q.Validate(); err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}

	rows, _, err := c.matching(ctx, q.Table, q.Where)
	if err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}
	// rows are already filtered; FirstValue only orders them
	v, found, err := domain.FirstValue(rows, domain.Query{Table: q.Table, Column: q.Column, OrderBy: q.OrderBy})
	if err != nil {
		return nil, false, domain.NewQueryError("select", q.Table, err)
	}
	return v, found, nil
}

// Insert stores row under the next id of table.
func (c *Client) Insert(ctx context.Context, table string, row domain.Row) error {
	if !domain.ValidIdentifier(table) {
		return domain.NewQueryError("insert", table, fmt.Errorf("invalid table %q", table))
	}
	if len(row) == 0 {
		return domain.NewQueryError("insert", table, fmt.Errorf("empty row"))
	}

	fields := make(map[string]any, len(row))
	for col, v := range row {
		if !domain.ValidIdentifier(col) {
			return domain.NewQueryError("insert", table, fmt.Errorf("invalid column %q", col))
		}
		if col == domain.ColumnID {
			continue
		}
		enc, err := encodeValue(v)
		if err != nil {
			return domain.NewQueryError("insert", table, fmt.Errorf("column %s: %w", col, err))
		}
		fields[col] = enc
	}
	if len(fields) == 0 {
		return domain.NewQueryError("insert", table, fmt.Errorf("row has no storable columns"))
	}

	id, err := c.client.Incr(ctx, c.seqKey(table)).Result()
	if err != nil {
		return domain.NewQueryError("insert", table, err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.HSet(ctx, c.rowKey(table, id), fields)
		member := backend.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)}
		pipe.ZAdd(ctx, c.rowsKey(table), member)
		for col, enc := range fields {
			if c.isIndexed(col) {
				pipe.ZAdd(ctx, c.indexKey(table, col, enc.(string)), member)
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewQueryError("insert", table, err)
	}
	return nil
}

// Delete removes every row matching all conditions.
func (c *Client) Delete(ctx context.Context, table string, where ...domain.Condition) (int64, error) {
	if !domain.ValidIdentifier(table) {
		return 0, domain.NewQueryError("delete", table, fmt.Errorf("invalid table %q", table))
	}
	for _, cond := range where {
		if err := cond.Validate(); err != nil {
			return 0, domain.NewQueryError("delete", table, err)
		}
	}

	rows, raw, err := c.matching(ctx, table, where)
	if err != nil {
		return 0, domain.NewQueryError("delete", table, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	_, err = c.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		for i, row := range rows {
			id := row[domain.ColumnID].(int64)
			member := strconv.FormatInt(id, 10)
			pipe.Del(ctx, c.rowKey(table, id))
			pipe.ZRem(ctx, c.rowsKey(table), member)
			for col, enc := range raw[i] {
				if c.isIndexed(col) {
					pipe.ZRem(ctx, c.indexKey(table, col, enc), member)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, domain.NewQueryError("delete", table, err)
	}
	return int64(len(rows)), nil
}

// matching loads the rows of table satisfying where, together with their
// encoded hash fields.
func (c *Client) matching(ctx context.Context, table string, where []domain.Condition) ([]domain.Row, []map[string]string, error) {
	setKey := c.rowsKey(table)
	for _, cond := range where {
		if cond.Op == domain.OpEq && c.isIndexed(cond.Column) {
			enc, err := encodeValue(cond.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("column %s: %w", cond.Column, err)
			}
			setKey = c.indexKey(table, cond.Column, enc)
			break
		}
	}

	members, err := c.client.ZRevRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return nil, nil, err
	}
	if len(members) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, 0, len(members))
	cmds := make([]*backend.MapStringStringCmd, 0, len(members))
	_, err = c.client.Pipelined(ctx, func(pipe backend.Pipeliner) error {
		for _, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt row index member %q", m)
			}
			ids = append(ids, id)
			cmds = append(cmds, pipe.HGetAll(ctx, c.rowKey(table, id)))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var rows []domain.Row
	var raw []map[string]string
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Removed between the index read and the fetch
			continue
		}
		row := domain.Row{domain.ColumnID: ids[i]}
		for col, enc := range fields {
			v, err := decodeValue(enc)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %s: %w", ids[i], col, err)
			}
			row[col] = v
		}
		ok, err := domain.MatchAll(row, where)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			rows = append(rows, row)
			raw = append(raw, fields)
		}
	}
	return rows, raw, nil
}

// encodeValue tags values with their type so they round-trip through hash fields.
func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return "s:" + x, nil
	case []byte:
		return "b:" + string(x), nil
	case int:
		return "i:" + strconv.FormatInt(int64(x), 10), nil
	case int32:
		return "i:" + strconv.FormatInt(int64(x), 10), nil
	case int64:
		return "i:" + strconv.FormatInt(x, 10), nil
	case float64:
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("null values are not supported")
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

func decodeValue(s string) (any, error) {
	tag, body, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("untagged value %q", s)
	}
	switch tag {
	case "s":
		return body, nil
	case "b":
		return []byte(body), nil
	case "i":
		return strconv.ParseInt(body, 10, 64)
	case "f":
		return strconv.ParseFloat(body, 64)
	}
	return nil, fmt.Errorf("unknown value tag %q", tag)
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
