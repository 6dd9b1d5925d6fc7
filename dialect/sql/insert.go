package sql

import "github.com/syssam/relic/dialect"

// ConflictPolicy selects the engine resolution when an INSERT or UPDATE
// violates a constraint. The zero value compiles to the engine default
// (ABORT).
type ConflictPolicy string

// Conflict resolution policies.
const (
	ConflictAbort    ConflictPolicy = "ABORT"
	ConflictIgnore   ConflictPolicy = "IGNORE"
	ConflictReplace  ConflictPolicy = "REPLACE"
	ConflictFail     ConflictPolicy = "FAIL"
	ConflictRollback ConflictPolicy = "ROLLBACK"
)

func (p ConflictPolicy) valid() bool {
	switch p {
	case "", ConflictAbort, ConflictIgnore, ConflictReplace, ConflictFail, ConflictRollback:
		return true
	}
	return false
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	table     string
	conflict  ConflictPolicy
	columns   []string
	values    [][]any
	defaults  bool
	returning []string
}

// Table returns the target table name.
func (i *InsertBuilder) Table() string { return i.table }

// Columns sets the insertion columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values appends one row of values, positionally matching Columns.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Set appends a single column-to-value pair. It is the single-row
// alternative to Columns and Values.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	if len(i.values) == 0 {
		i.values = append(i.values, []any{v})
	} else {
		i.values[0] = append(i.values[0], v)
	}
	return i
}

// Assign appends typed column-to-value assignments produced by schema
// column tokens.
func (i *InsertBuilder) Assign(as ...Assignment) *InsertBuilder {
	for _, a := range as {
		i.Set(a.Column, a.Value)
	}
	return i
}

// Default marks the statement to insert the table default values.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// OnConflict sets the conflict resolution policy.
func (i *InsertBuilder) OnConflict(p ConflictPolicy) *InsertBuilder {
	i.conflict = p
	return i
}

// Returning appends a RETURNING clause. Unsupported on MySQL.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = append(i.returning, columns...)
	return i
}

func (i *InsertBuilder) emit(b *Builder) {
	if !isIdent(i.table) {
		b.AddError(fmtError("invalid table %q", i.table))
		return
	}
	if !i.conflict.valid() {
		b.AddError(fmtError("invalid conflict policy %q", string(i.conflict)))
		return
	}
	policy := i.conflict
	if policy == ConflictAbort {
		policy = "" // engine default
	}
	switch b.dialect {
	case dialect.SQLite:
		b.WriteString("INSERT")
		if policy != "" {
			b.WriteString(" OR " + string(policy))
		}
		b.WriteString(" INTO ")
	case dialect.MySQL:
		switch policy {
		case "":
			b.WriteString("INSERT INTO ")
		case ConflictIgnore:
			b.WriteString("INSERT IGNORE INTO ")
		case ConflictReplace:
			b.WriteString("REPLACE INTO ")
		default:
			b.AddError(fmtError("conflict policy %q is not supported on mysql", string(policy)))
			return
		}
	case dialect.Postgres:
		if policy != "" && policy != ConflictIgnore {
			b.AddError(fmtError("conflict policy %q is not supported on postgres", string(policy)))
			return
		}
		b.WriteString("INSERT INTO ")
	default:
		b.WriteString("INSERT INTO ")
	}
	b.Ident(i.table)
	switch {
	case i.defaults && len(i.columns) == 0:
		b.WriteString(" DEFAULT VALUES")
	case i.defaults:
		b.AddError(fmtError("insert mixes default values with columns"))
		return
	case len(i.columns) == 0:
		b.AddError(fmtError("insert without columns"))
		return
	default:
		b.WriteString(" ")
		b.Wrap(func(b *Builder) {
			b.IdentComma(i.columns...)
		})
		b.WriteString(" VALUES ")
		if len(i.values) == 0 {
			b.AddError(fmtError("insert without values"))
			return
		}
		for r, row := range i.values {
			if len(row) != len(i.columns) {
				b.AddError(fmtError("insert row %d has %d values for %d columns", r, len(row), len(i.columns)))
				return
			}
			if r > 0 {
				b.Comma()
			}
			b.Wrap(func(b *Builder) {
				b.Args(row...)
			})
		}
	}
	if b.dialect == dialect.Postgres && i.conflict == ConflictIgnore {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	if len(i.returning) > 0 {
		if b.dialect == dialect.MySQL {
			b.AddError(fmtError("returning is not supported on mysql"))
			return
		}
		b.WriteString(" RETURNING ")
		b.IdentComma(i.returning...)
	}
}

// Query compiles the statement and returns the SQL text with its
// ordered bind values.
func (i *InsertBuilder) Query() (string, []any) {
	b := NewBuilder(i.dialect)
	i.emit(b)
	return b.Query()
}

// Err returns the construction errors of the statement, if any.
func (i *InsertBuilder) Err() error {
	b := NewBuilder(i.dialect)
	i.emit(b)
	return b.Err()
}
