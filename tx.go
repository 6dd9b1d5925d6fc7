package relic

import (
	"context"
	"fmt"

	"github.com/syssam/relic/dialect"
	"github.com/syssam/relic/dialect/sql"
)

// Statement is implemented by all compiled statement builders.
type Statement interface {
	Query() (string, []any)
	Err() error
}

// Tx is an execution scope handed to Transaction and Read callbacks. A
// write scope runs inside an engine transaction and admits Exec and
// nested Transaction calls; a read scope admits Query only.
type Tx struct {
	db       *DB
	conn     dialect.ExecQuerier
	writable bool
	depth    int
	touched  map[string]bool
}

// Writable reports whether the scope admits write statements.
func (tx *Tx) Writable() bool { return tx.writable }

// Exec runs a write statement and returns the engine result. In a read
// scope it returns ErrReadOnly. Construction errors of the statement
// surface here, before the engine sees it.
func (tx *Tx) Exec(ctx context.Context, st Statement) (sql.Result, error) {
	if !tx.writable {
		return nil, ErrReadOnly
	}
	if err := st.Err(); err != nil {
		return nil, err
	}
	query, args := st.Query()
	var res sql.Result
	if err := tx.conn.Exec(ctx, query, args, &res); err != nil {
		return nil, wrapExecError(query, args, tableOf(st), err)
	}
	if t := tableOf(st); t != "" {
		tx.touched[t] = true
	}
	return res, nil
}

// Query runs a read statement and returns a cursor over its rows. In a
// read scope with a configured cache the result is served from and
// stored into the cache, keyed under every table the statement reads,
// so a write to any of them invalidates it.
func (tx *Tx) Query(ctx context.Context, st Statement) (*Cursor, error) {
	if err := st.Err(); err != nil {
		return nil, err
	}
	query, args := st.Query()
	var keys []string
	if !tx.writable && tx.db.cache != nil {
		if tables := tablesOf(st); len(tables) > 0 {
			keys = make([]string, len(tables))
			for i, table := range tables {
				keys[i] = cacheKey(table, query, args)
			}
			if data, ok := cacheLookup(tx.db.cache, keys); ok {
				if p, err := decodeRows(data); err == nil {
					return cursorFromCache(p), nil
				}
				// Undecodable entry, drop it and re-read.
				for _, key := range keys {
					tx.db.cache.Delete(key)
				}
			}
		}
	}
	var rows sql.Rows
	if err := tx.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, wrapExecError(query, args, tableOf(st), err)
	}
	cur, err := newCursor(&rows)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return cur, nil
	}
	p, err := cur.drain()
	if err != nil {
		return nil, err
	}
	if data, err := encodeRows(p); err == nil {
		for _, key := range keys {
			tx.db.cache.Set(key, data)
		}
	}
	return cursorFromCache(p), nil
}

// QueryRow runs a read statement expected to return at most one row and
// positions the cursor on it. The second return value reports whether a
// row was found; the cursor is already closed when it returns.
func (tx *Tx) QueryRow(ctx context.Context, st Statement) (*Cursor, bool, error) {
	cur, err := tx.Query(ctx, st)
	if err != nil {
		return nil, false, err
	}
	if !cur.Next() {
		err := cur.Err()
		cur.Close()
		return nil, false, err
	}
	if err := cur.Close(); err != nil {
		return nil, false, err
	}
	return cur, true, nil
}

// Transaction runs fn inside a nested scope backed by a savepoint. An
// error or panic from fn rolls back to the savepoint, leaving the outer
// scope intact; a nil return releases it. Read scopes do not nest.
func (tx *Tx) Transaction(ctx context.Context, fn func(*Tx) error) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.depth++
	name := fmt.Sprintf("relic_sp_%d", tx.depth)
	defer func() { tx.depth-- }()
	if err := tx.execRaw(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}
	if err := tx.run(ctx, fn, name); err != nil {
		return err
	}
	return tx.execRaw(ctx, "RELEASE SAVEPOINT "+name)
}

func (tx *Tx) run(ctx context.Context, fn func(*Tx) error, savepoint string) (err error) {
	// ROLLBACK TO rewinds but keeps the savepoint on the stack, so a
	// RELEASE follows to pop it.
	defer func() {
		if r := recover(); r != nil {
			tx.execRaw(ctx, "ROLLBACK TO SAVEPOINT "+savepoint)
			tx.execRaw(ctx, "RELEASE SAVEPOINT "+savepoint)
			panic(r)
		}
		if err != nil {
			if rerr := tx.execRaw(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rerr != nil {
				err = fmt.Errorf("%w (savepoint rollback failed: %v)", err, rerr)
				return
			}
			tx.execRaw(ctx, "RELEASE SAVEPOINT "+savepoint)
		}
	}()
	return fn(tx)
}

func (tx *Tx) execRaw(ctx context.Context, query string, args ...any) error {
	return tx.conn.Exec(ctx, query, args, nil)
}

func (tx *Tx) queryRaw(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows sql.Rows
	if err := tx.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return &rows, nil
}

// tableOf returns the primary table of a statement, when it names one.
func tableOf(st Statement) string {
	switch s := st.(type) {
	case interface{ Table() string }:
		return s.Table()
	case interface{ TableName() string }:
		return s.TableName()
	}
	return ""
}

// tablesOf returns every table a statement reads. Selections report
// their FROM, join and sub-query tables; other statements their single
// target.
func tablesOf(st Statement) []string {
	if s, ok := st.(interface{ Tables() []string }); ok {
		return s.Tables()
	}
	if t := tableOf(st); t != "" {
		return []string{t}
	}
	return nil
}

func wrapExecError(query string, args []any, table string, err error) error {
	if kind, ok := sql.ConstraintViolation(err); ok {
		return &ConstraintError{Kind: kind, Table: table, err: err}
	}
	return &ExecError{Query: query, Binds: len(args), err: err}
}
