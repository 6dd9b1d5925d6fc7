package sql

import "strconv"

// DialectBuilder is the entry point of the statement builders. It pins
// the dialect the statements compile for.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a builder for the given dialect.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select starts a SELECT statement with the given projection columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return (&Selector{dialect: d.dialect}).Select(columns...)
}

// SelectExpr starts a SELECT statement with the given typed projection
// expressions.
func (d *DialectBuilder) SelectExpr(exprs ...Node) *Selector {
	return (&Selector{dialect: d.dialect}).SelectExpr(exprs...)
}

// Insert starts an INSERT statement for the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update starts an UPDATE statement for the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Delete starts a DELETE statement for the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d.dialect, table: table}
}

// TableView is a queryable source of a SELECT statement: a declared
// table, an aliased table, or a named view.
type TableView interface {
	view(b *Builder)
	// ref returns the name columns are qualified with.
	ref() string
}

// SelectTable is a table (or view) reference in a FROM or JOIN clause.
type SelectTable struct {
	name  string
	alias string
}

// Table returns a reference to the given table or view name.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the alias the table is referenced by.
func (t *SelectTable) As(alias string) *SelectTable {
	t.alias = alias
	return t
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

// C returns the qualified form of the given column.
func (t *SelectTable) C(column string) string {
	return t.ref() + "." + column
}

// Columns returns the qualified form of the given columns.
func (t *SelectTable) Columns(columns ...string) []string {
	qualified := make([]string, len(columns))
	for i, c := range columns {
		qualified[i] = t.C(c)
	}
	return qualified
}

func (t *SelectTable) ref() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

func (t *SelectTable) view(b *Builder) {
	if !isIdent(t.name) {
		b.AddError(fmtError("invalid table %q", t.name))
		return
	}
	b.addTable(t.name)
	b.Ident(t.name)
	if t.alias != "" {
		b.WriteString(" AS ")
		b.Ident(t.alias)
	}
}

// Join kinds.
const (
	joinInner = "JOIN"
	joinLeft  = "LEFT JOIN"
	joinCross = "CROSS JOIN"
)

type joinClause struct {
	kind  string
	table TableView
	on    P
	onSet bool
}

// Selector builds a SELECT statement. Clauses accumulate in any call
// order and compile in fixed SQL grammar order.
type Selector struct {
	dialect    string
	distinct   bool
	projection []Node
	from       TableView
	joins      []joinClause
	where      P
	whereSet   bool
	groupBy    []string
	having     P
	havingSet  bool
	orderBy    []string
	limit      *int
	offset     *int
}

// Select appends raw projection columns. Strings that are not plain or
// qualified identifiers pass through as fragments ("COUNT(*)").
func (s *Selector) Select(columns ...string) *Selector {
	for _, c := range columns {
		name := c
		s.projection = append(s.projection, Expr[any]{fn: func(b *Builder) {
			b.Ident(name)
		}})
	}
	return s
}

// SelectExpr appends typed expressions to the projection.
func (s *Selector) SelectExpr(exprs ...Node) *Selector {
	s.projection = append(s.projection, exprs...)
	return s
}

// As aliases the last appended projection entry.
func (s *Selector) As(alias string) *Selector {
	if n := len(s.projection); n > 0 {
		inner := s.projection[n-1]
		s.projection[n-1] = Expr[any]{fn: func(b *Builder) {
			inner.emit(b)
			b.WriteString(" AS ")
			b.Ident(alias)
		}}
	}
	return s
}

// Distinct marks the selection as DISTINCT.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// From sets the primary table of the selection.
func (s *Selector) From(t TableView) *Selector {
	s.from = t
	return s
}

// Join appends an INNER JOIN on the given table.
func (s *Selector) Join(t TableView) *Selector {
	s.joins = append(s.joins, joinClause{kind: joinInner, table: t})
	return s
}

// LeftJoin appends a LEFT JOIN on the given table.
func (s *Selector) LeftJoin(t TableView) *Selector {
	s.joins = append(s.joins, joinClause{kind: joinLeft, table: t})
	return s
}

// CrossJoin appends a CROSS JOIN on the given table. Cross joins carry
// no ON clause.
func (s *Selector) CrossJoin(t TableView) *Selector {
	s.joins = append(s.joins, joinClause{kind: joinCross, table: t})
	return s
}

// On sets the join predicate of the last appended join to an equality
// of the two given columns.
func (s *Selector) On(col1, col2 string) *Selector {
	return s.OnP(ColumnsEQ(col1, col2))
}

// OnP sets the join predicate of the last appended join.
func (s *Selector) OnP(p P) *Selector {
	if n := len(s.joins); n > 0 {
		s.joins[n-1].on = p
		s.joins[n-1].onSet = true
	}
	return s
}

// Where adds the given predicate to the WHERE clause. Successive calls
// are combined with AND.
func (s *Selector) Where(p P) *Selector {
	if s.whereSet {
		s.where = And(s.where, p)
	} else {
		s.where = p
		s.whereSet = true
	}
	return s
}

// GroupBy appends columns to the GROUP BY clause.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Having sets the HAVING predicate. Successive calls are combined with
// AND.
func (s *Selector) Having(p P) *Selector {
	if s.havingSet {
		s.having = And(s.having, p)
	} else {
		s.having = p
		s.havingSet = true
	}
	return s
}

// OrderBy appends terms to the ORDER BY clause. Use Asc and Desc to
// attach an explicit direction.
func (s *Selector) OrderBy(terms ...string) *Selector {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

// Asc returns an ascending order term for the given column.
func Asc(column string) string { return column + " ASC" }

// Desc returns a descending order term for the given column.
func Desc(column string) string { return column + " DESC" }

// Limit caps the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// TableName returns the name of the primary table, or an empty string
// when the selection has no FROM clause.
func (s *Selector) TableName() string {
	if t, ok := s.from.(*SelectTable); ok {
		return t.name
	}
	return ""
}

// Tables returns every table the selection reads from, in first-use
// order: the FROM table, joined tables and the tables of sub-queries.
// Result caching keys and invalidates entries under each of them.
func (s *Selector) Tables() []string {
	b := NewBuilder(s.dialect)
	s.emit(b)
	return b.Tables()
}

// emit compiles the selection into b. Sub-selects share the parent
// bind list; the qualification mode is scoped to this selection.
func (s *Selector) emit(b *Builder) {
	qualify := b.qualify
	b.qualify = len(s.joins) > 0
	defer func() { b.qualify = qualify }()

	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.projection) == 0 {
		b.WriteString("*")
	}
	for i, p := range s.projection {
		if i > 0 {
			b.Comma()
		}
		p.emit(b)
	}
	if s.from == nil {
		b.AddError(fmtError("select without a FROM table"))
		return
	}
	b.WriteString(" FROM ")
	s.from.view(b)
	for _, j := range s.joins {
		b.Pad().WriteString(j.kind).Pad()
		j.table.view(b)
		switch {
		case j.kind == joinCross:
			if j.onSet {
				b.AddError(fmtError("cross join with an ON clause"))
			}
		case !j.onSet:
			b.AddError(fmtError("join without an ON clause"))
		default:
			b.WriteString(" ON ")
			j.on.emit(b)
		}
	}
	if s.whereSet {
		b.WriteString(" WHERE ")
		s.where.emit(b)
	}
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.IdentComma(s.groupBy...)
	}
	if s.havingSet {
		b.WriteString(" HAVING ")
		s.having.emit(b)
	}
	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.IdentComma(s.orderBy...)
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(*s.offset))
	}
}

// Query compiles the selection and returns the SQL text with its
// ordered bind values. Compiling the same state twice yields identical
// output.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	s.emit(b)
	return b.Query()
}

// QueryDialect compiles the selection for the given dialect, ignoring
// the dialect the selection was started with. View DDL is rendered
// through it.
func (s *Selector) QueryDialect(dialect string) (string, []any) {
	b := NewBuilder(dialect)
	s.emit(b)
	return b.Query()
}

// Err returns the construction errors of the selection, if any.
func (s *Selector) Err() error {
	b := NewBuilder(s.dialect)
	s.emit(b)
	return b.Err()
}

// Exists returns a predicate reporting whether the sub-query returns
// any row.
func Exists(s *Selector) P {
	return P{fn: func(b *Builder) {
		b.WriteString("EXISTS ")
		b.Wrap(s.emit)
	}}
}

// NotExists returns a predicate reporting whether the sub-query returns
// no rows.
func NotExists(s *Selector) P {
	return P{fn: func(b *Builder) {
		b.WriteString("NOT EXISTS ")
		b.Wrap(s.emit)
	}}
}

// InSelect returns a membership predicate over a sub-query.
func (e Expr[T]) InSelect(s *Selector) P {
	return P{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			e.emit(b)
			b.WriteString(" IN ")
			b.Wrap(s.emit)
		})
	}}
}

// Scalar returns the sub-query as a typed scalar expression.
func Scalar[T any](s *Selector) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		b.Wrap(s.emit)
	}}
}
