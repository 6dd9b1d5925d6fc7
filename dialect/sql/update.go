package sql

import "github.com/syssam/relic/dialect"

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	dialect  string
	table    string
	conflict ConflictPolicy
	sets     []Assignment
	exprs    map[int]Node // expression assignments, indexed into sets
	where    P
	whereSet bool
}

// Table returns the target table name.
func (u *UpdateBuilder) Table() string { return u.table }

// Set appends a column-to-value assignment. Assignments compile in the
// order they were appended.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, Assignment{Column: column, Value: v})
	return u
}

// SetExpr appends a column-to-expression assignment, e.g. incrementing
// a counter in place.
func (u *UpdateBuilder) SetExpr(column string, e Node) *UpdateBuilder {
	if u.exprs == nil {
		u.exprs = make(map[int]Node)
	}
	u.exprs[len(u.sets)] = e
	u.sets = append(u.sets, Assignment{Column: column})
	return u
}

// Assign appends typed assignments produced by schema column tokens.
func (u *UpdateBuilder) Assign(as ...Assignment) *UpdateBuilder {
	u.sets = append(u.sets, as...)
	return u
}

// OnConflict sets the conflict resolution policy. Only SQLite supports
// UPDATE OR <policy>.
func (u *UpdateBuilder) OnConflict(p ConflictPolicy) *UpdateBuilder {
	u.conflict = p
	return u
}

// Where adds the given predicate to the WHERE clause. Successive calls
// are combined with AND.
func (u *UpdateBuilder) Where(p P) *UpdateBuilder {
	if u.whereSet {
		u.where = And(u.where, p)
	} else {
		u.where = p
		u.whereSet = true
	}
	return u
}

func (u *UpdateBuilder) emit(b *Builder) {
	if !isIdent(u.table) {
		b.AddError(fmtError("invalid table %q", u.table))
		return
	}
	if !u.conflict.valid() {
		b.AddError(fmtError("invalid conflict policy %q", string(u.conflict)))
		return
	}
	b.WriteString("UPDATE")
	if p := u.conflict; p != "" && p != ConflictAbort {
		if b.dialect != dialect.SQLite {
			b.AddError(fmtError("update conflict policy %q is only supported on sqlite", string(p)))
			return
		}
		b.WriteString(" OR " + string(p))
	}
	b.Pad()
	b.Ident(u.table)
	b.WriteString(" SET ")
	if len(u.sets) == 0 {
		b.AddError(fmtError("update without assignments"))
		return
	}
	for i, a := range u.sets {
		if i > 0 {
			b.Comma()
		}
		b.Ident(a.Column)
		b.WriteString(" = ")
		if e, ok := u.exprs[i]; ok {
			e.emit(b)
		} else {
			b.Arg(a.Value)
		}
	}
	if u.whereSet {
		b.WriteString(" WHERE ")
		u.where.emit(b)
	}
}

// Query compiles the statement and returns the SQL text with its
// ordered bind values.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.dialect)
	u.emit(b)
	return b.Query()
}

// Err returns the construction errors of the statement, if any.
func (u *UpdateBuilder) Err() error {
	b := NewBuilder(u.dialect)
	u.emit(b)
	return b.Err()
}
