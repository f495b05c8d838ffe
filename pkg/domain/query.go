package domain

import (
	"cmp"
	"fmt"
	"strconv"
)

// Operator is a comparison supported in a Condition.
type Operator string

const (
	OpEq Operator = "="
	OpLt Operator = "<"
	OpLe Operator = "<="
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpLt, OpLe:
		return true
	}
	return false
}

// Condition is a single predicate. Conditions in a slice are combined by conjunction.
type Condition struct {
	Column string
	Op     Operator
	Value  any
}

// Eq builds a column = value condition.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Op: OpEq, Value: value}
}

// Lt builds a column < value condition.
func Lt(column string, value any) Condition {
	return Condition{Column: column, Op: OpLt, Value: value}
}

// Le builds a column <= value condition.
func Le(column string, value any) Condition {
	return Condition{Column: column, Op: OpLe, Value: value}
}

// Validate rejects unknown operators and unsafe column names.
func (c Condition) Validate() error {
	if !ValidIdentifier(c.Column) {
		return fmt.Errorf("invalid column %q", c.Column)
	}
	if !c.Op.Valid() {
		return fmt.Errorf("unsupported operator %q", c.Op)
	}
	return nil
}

// Matches evaluates the condition against an in-memory row.
// A row without the column never matches.
func (c Condition) Matches(row Row) (bool, error) {
	v, ok := row[c.Column]
	if !ok || v == nil {
		return false, nil
	}
	n, err := Compare(v, c.Value)
	if err != nil {
		return false, fmt.Errorf("column %s: %w", c.Column, err)
	}
	switch c.Op {
	case OpEq:
		return n == 0, nil
	case OpLt:
		return n < 0, nil
	case OpLe:
		return n <= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", c.Op)
}

// MatchAll reports whether row satisfies every condition.
func MatchAll(row Row, where []Condition) (bool, error) {
	for _, c := range where {
		ok, err := c.Matches(row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Order sorts query results by a column.
type Order struct {
	Column string
	Desc   bool
}

// Query selects a single column value from the first row matching Where.
type Query struct {
	Table   string
	Column  string
	Where   []Condition
	OrderBy []Order
	Limit   int
}

// Validate checks every identifier and operator of the query.
func (q Query) Validate() error {
	if !ValidIdentifier(q.Table) {
		return fmt.Errorf("invalid table %q", q.Table)
	}
	if !ValidIdentifier(q.Column) {
		return fmt.Errorf("invalid column %q", q.Column)
	}
	for _, c := range q.Where {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, o := range q.OrderBy {
		if !ValidIdentifier(o.Column) {
			return fmt.Errorf("invalid order column %q", o.Column)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("negative limit %d", q.Limit)
	}
	return nil
}

// Compare orders two column values. Integers of any width compare numerically,
// strings lexically. A string compared with an integer is parsed as an integer,
// which is how key-value backends hand numeric columns back.
func Compare(a, b any) (int, error) {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), nil
		case float64:
			return cmp.Compare(float64(x), y), nil
		case string:
			n, err := strconv.ParseInt(y, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot compare %d with %q", x, y)
			}
			return cmp.Compare(x, n), nil
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, float64(y)), nil
		case float64:
			return cmp.Compare(x, y), nil
		}
	case string:
		switch y := b.(type) {
		case string:
			return cmp.Compare(x, y), nil
		case int64:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot compare %q with %d", x, y)
			}
			return cmp.Compare(n, y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	}
	return v
}
