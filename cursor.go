package relic

import (
	dbsql "database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/relic/dialect/sql"
	"github.com/syssam/relic/schema"
)

// Cursor is a forward-only iterator over a query result set. Rows are
// read with Next and projected with the typed accessors Value,
// NullValue and ValueAt. A cursor served from the result cache behaves
// identically to one reading from the engine.
type Cursor struct {
	rows    *sql.Rows
	columns []string
	current []any
	err     error
	closed  bool

	// cached-mode fields; rows is nil when set.
	cached [][]any
	idx    int
}

func newCursor(rows *sql.Rows) (*Cursor, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &Cursor{rows: rows, columns: columns}, nil
}

func cursorFromCache(p *cachedRows) *Cursor {
	return &Cursor{columns: p.Columns, cached: p.Rows, idx: -1}
}

// Next advances to the next row. It returns false when the result set
// is exhausted or an error occurred; Err distinguishes the two.
func (c *Cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if c.rows == nil {
		c.idx++
		if c.idx >= len(c.cached) {
			return false
		}
		c.current = c.cached[c.idx]
		return true
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	values := make([]any, len(c.columns))
	ptrs := make([]any, len(c.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = err
		return false
	}
	c.current = values
	return true
}

// Err returns the first error encountered during iteration.
func (c *Cursor) Err() error { return c.err }

// Columns returns the result column names in projection order.
func (c *Cursor) Columns() []string { return c.columns }

// Close releases the underlying row set. Closing twice is a no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.rows != nil {
		return c.rows.Close()
	}
	return nil
}

// drain reads all remaining rows into memory and closes the row set.
func (c *Cursor) drain() (*cachedRows, error) {
	p := &cachedRows{Columns: c.columns}
	for c.Next() {
		p.Rows = append(p.Rows, c.current)
	}
	if err := c.Err(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.Close(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Cursor) columnIndex(name string) (int, error) {
	for i, col := range c.columns {
		if col == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("relic: no column %q in result set %v", name, c.columns)
}

// Value reads the named column of the current row as the field's Go
// type. The field token carries the type, so a mismatched read fails to
// compile rather than at runtime.
func Value[T any](c *Cursor, f schema.Field[T]) (T, error) {
	var zero T
	i, err := c.columnIndex(f.Name())
	if err != nil {
		return zero, err
	}
	return ValueAt[T](c, i)
}

// NullValue reads the named column like Value but reports NULL through
// the Valid flag instead of an error.
func NullValue[T any](c *Cursor, f schema.Field[T]) (dbsql.Null[T], error) {
	i, err := c.columnIndex(f.Name())
	if err != nil {
		return dbsql.Null[T]{}, err
	}
	if c.current[i] == nil {
		return dbsql.Null[T]{}, nil
	}
	v, err := ValueAt[T](c, i)
	if err != nil {
		return dbsql.Null[T]{}, err
	}
	return dbsql.Null[T]{V: v, Valid: true}, nil
}

// ValueAt reads the column at the given projection position as T. It is
// the positional accessor for computed projections that carry no schema
// field.
func ValueAt[T any](c *Cursor, i int) (T, error) {
	var zero T
	if c.err != nil {
		return zero, c.err
	}
	if i < 0 || i >= len(c.current) {
		return zero, fmt.Errorf("relic: column index %d out of range [0, %d)", i, len(c.current))
	}
	v, err := convert[T](c.current[i])
	if err != nil {
		if ce, ok := err.(*ConversionError); ok {
			ce.Column = c.columns[i]
		}
		return zero, err
	}
	return v, nil
}

// convert coerces a driver value to the requested Go type. Engines and
// the result cache are permissive about integer widths and text
// representations, so the conversion accepts the common encodings of
// each kind.
func convert[T any](v any) (T, error) {
	var zero T
	if direct, ok := v.(T); ok {
		return direct, nil
	}
	switch out := any(&zero).(type) {
	case *int64:
		switch n := v.(type) {
		case int:
			*out = int64(n)
			return zero, nil
		case int32:
			*out = int64(n)
			return zero, nil
		case uint64:
			*out = int64(n)
			return zero, nil
		case int8:
			*out = int64(n)
			return zero, nil
		case int16:
			*out = int64(n)
			return zero, nil
		case uint8:
			*out = int64(n)
			return zero, nil
		case uint16:
			*out = int64(n)
			return zero, nil
		case uint32:
			*out = int64(n)
			return zero, nil
		}
	case *int:
		switch n := v.(type) {
		case int64:
			*out = int(n)
			return zero, nil
		case uint64:
			*out = int(n)
			return zero, nil
		case uint8:
			*out = int(n)
			return zero, nil
		case uint16:
			*out = int(n)
			return zero, nil
		case uint32:
			*out = int(n)
			return zero, nil
		}
	case *float64:
		switch n := v.(type) {
		case float32:
			*out = float64(n)
			return zero, nil
		case int64:
			*out = float64(n)
			return zero, nil
		}
	case *string:
		if b, ok := v.([]byte); ok {
			*out = string(b)
			return zero, nil
		}
	case *[]byte:
		if s, ok := v.(string); ok {
			*out = []byte(s)
			return zero, nil
		}
	case *bool:
		switch n := v.(type) {
		case int64:
			*out = n != 0
			return zero, nil
		case uint64:
			*out = n != 0
			return zero, nil
		}
	case *time.Time:
		if s, ok := stringValue(v); ok {
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, s); err == nil {
					*out = t
					return zero, nil
				}
			}
		}
	case *uuid.UUID:
		switch n := v.(type) {
		case string:
			id, err := uuid.Parse(n)
			if err == nil {
				*out = id
				return zero, nil
			}
		case []byte:
			id, err := uuid.ParseBytes(n)
			if err == nil {
				*out = id
				return zero, nil
			}
		}
	case *any:
		*out = v
		return zero, nil
	}
	return zero, &ConversionError{Value: v, Target: fmt.Sprintf("%T", zero)}
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}
