package sql

// DeleteBuilder builds a DELETE statement. A delete compiles only with
// an explicit predicate or an explicit AllRows call: an unconstrained
// delete is never the silent default.
type DeleteBuilder struct {
	dialect  string
	table    string
	where    P
	whereSet bool
	all      bool
}

// Table returns the target table name.
func (d *DeleteBuilder) Table() string { return d.table }

// Where adds the given predicate to the WHERE clause. Successive calls
// are combined with AND.
func (d *DeleteBuilder) Where(p P) *DeleteBuilder {
	if d.whereSet {
		d.where = And(d.where, p)
	} else {
		d.where = p
		d.whereSet = true
	}
	return d
}

// AllRows marks the statement as an intentional unconstrained delete.
// It is a distinct operation from a predicate that happens to match
// every row.
func (d *DeleteBuilder) AllRows() *DeleteBuilder {
	d.all = true
	return d
}

func (d *DeleteBuilder) emit(b *Builder) {
	if !isIdent(d.table) {
		b.AddError(fmtError("invalid table %q", d.table))
		return
	}
	switch {
	case d.all && d.whereSet:
		b.AddError(fmtError("delete mixes AllRows with a predicate"))
		return
	case !d.all && !d.whereSet:
		b.AddError(fmtError("delete requires a predicate or an explicit AllRows call"))
		return
	}
	b.WriteString("DELETE FROM ")
	b.Ident(d.table)
	if d.whereSet {
		b.WriteString(" WHERE ")
		d.where.emit(b)
	}
}

// Query compiles the statement and returns the SQL text with its
// ordered bind values.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.dialect)
	d.emit(b)
	return b.Query()
}

// Err returns the construction errors of the statement, if any.
func (d *DeleteBuilder) Err() error {
	b := NewBuilder(d.dialect)
	d.emit(b)
	return b.Err()
}
