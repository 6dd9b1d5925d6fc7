package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/syssam/relic/dialect/sql"
)

// Kind is the closed set of scalar value kinds a column can hold.
type Kind int

// Column value kinds.
const (
	KindInt64 Kind = iota + 1
	KindFloat
	KindText
	KindBlob
	KindBool
	KindTime
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// RefAction is the referential action of a foreign key.
type RefAction string

// Referential actions.
const (
	Cascade    RefAction = "CASCADE"
	SetNull    RefAction = "SET NULL"
	SetDefault RefAction = "SET DEFAULT"
	Restrict   RefAction = "RESTRICT"
	NoAction   RefAction = "NO ACTION"
)

var validNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validName(s string) bool {
	return s != "" && len(s) <= 128 && validNameRe.MatchString(s)
}

// column is the kind-independent core of a column token. The typed
// wrappers in columns.go carry the value type in their Go type.
type column struct {
	name       string
	kind       Kind
	table      *Table
	nullable   bool
	unique     bool
	primary    bool
	autoInc    bool
	size       int
	collation  string
	hasDefault bool
	defaultVal any
	ref        *reference
	errs       []error
}

type reference struct {
	target   *column
	onDelete RefAction
	onUpdate RefAction
}

// Name returns the column name.
func (c *column) Name() string { return c.name }

// Kind returns the column value kind.
func (c *column) Kind() Kind { return c.kind }

// Nullable reports whether the column admits NULL.
func (c *column) Nullable() bool { return c.nullable }

// TableName returns the owning table name, or an empty string for a
// detached column.
func (c *column) TableName() string {
	if c.table == nil {
		return ""
	}
	return c.table.name
}

func (c *column) addErr(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *column) setRef(target *column) {
	if c.ref != nil {
		c.addErr(fmt.Errorf("schema: column %q declares two references", c.name))
		return
	}
	c.ref = &reference{target: target}
}

func (c *column) setRefAction(set func(*reference)) {
	if c.ref == nil {
		c.addErr(fmt.Errorf("schema: column %q sets a referential action without a reference", c.name))
		return
	}
	set(c.ref)
}

// ColumnDef is implemented by all typed column tokens.
type ColumnDef interface {
	def() *column
}

// Field ties a column token to its Go value type. It is the access key
// of typed cursor projection: a Field[int64] can only read an integer
// column.
type Field[T any] interface {
	Name() string
	typed(T)
}

// Table is an ordered, insertion-stable collection of columns with its
// constraints and indices. Tables are built with NewTable and validated
// once at Build time; the column set never changes afterwards.
type Table struct {
	name    string
	columns []*column
	byName  map[string]*column
	primary []*column
	uniques [][]*column
	indexes []*Index
}

// Index is a named (optionally unique) index over a tuple of columns.
type Index struct {
	name    string
	unique  bool
	columns []*column
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// Unique reports whether the index enforces uniqueness.
func (i *Index) Unique() bool { return i.unique }

// TableBuilder accumulates the declaration of a table. Build performs
// all construction-time validation.
type TableBuilder struct {
	name    string
	columns []ColumnDef
	primary []ColumnDef
	pkSet   bool
	uniques [][]ColumnDef
	indexes []indexDecl
}

type indexDecl struct {
	name    string
	unique  bool
	columns []ColumnDef
}

// NewTable starts the declaration of a table.
func NewTable(name string) *TableBuilder {
	return &TableBuilder{name: name}
}

// Columns appends columns, preserving declaration order.
func (b *TableBuilder) Columns(cols ...ColumnDef) *TableBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

// PrimaryKey declares the (possibly composite) primary key.
func (b *TableBuilder) PrimaryKey(cols ...ColumnDef) *TableBuilder {
	b.primary = append(b.primary, cols...)
	b.pkSet = true
	return b
}

// Unique declares a (possibly composite) unique constraint.
func (b *TableBuilder) Unique(cols ...ColumnDef) *TableBuilder {
	b.uniques = append(b.uniques, cols)
	return b
}

// Index declares a named non-unique index.
func (b *TableBuilder) Index(name string, cols ...ColumnDef) *TableBuilder {
	b.indexes = append(b.indexes, indexDecl{name: name, columns: cols})
	return b
}

// UniqueIndex declares a named unique index.
func (b *TableBuilder) UniqueIndex(name string, cols ...ColumnDef) *TableBuilder {
	b.indexes = append(b.indexes, indexDecl{name: name, unique: true, columns: cols})
	return b
}

// Build validates the declaration and returns the immutable table.
// Duplicate column names, a second primary-key declaration, a foreign
// key referencing a non-unique column, and similar malformations are
// reported here, never at execution time.
func (b *TableBuilder) Build() (*Table, error) {
	var errs []error
	if !validName(b.name) {
		errs = append(errs, fmt.Errorf("schema: invalid table name %q", b.name))
	}
	t := &Table{
		name:   b.name,
		byName: make(map[string]*column, len(b.columns)),
	}
	for _, cd := range b.columns {
		c := cd.def()
		errs = append(errs, c.errs...)
		if !validName(c.name) {
			errs = append(errs, fmt.Errorf("schema: table %q: invalid column name %q", b.name, c.name))
			continue
		}
		if c.table != nil {
			errs = append(errs, fmt.Errorf("schema: column %q already belongs to table %q", c.name, c.table.name))
			continue
		}
		if _, ok := t.byName[c.name]; ok {
			errs = append(errs, fmt.Errorf("schema: table %q: duplicate column %q", b.name, c.name))
			continue
		}
		t.columns = append(t.columns, c)
		t.byName[c.name] = c
	}
	// Primary key: column-level flags and a builder-level declaration
	// are two declarations of the same constraint.
	var colPK []*column
	for _, c := range t.columns {
		if c.primary {
			colPK = append(colPK, c)
		}
	}
	switch {
	case b.pkSet && len(colPK) > 0:
		errs = append(errs, fmt.Errorf("schema: table %q: primary key declared twice", b.name))
	case b.pkSet:
		for _, cd := range b.primary {
			c, err := t.member(cd)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			t.primary = append(t.primary, c)
		}
	case len(colPK) > 1:
		errs = append(errs, fmt.Errorf("schema: table %q: multiple column-level primary keys", b.name))
	default:
		t.primary = colPK
	}
	for _, c := range t.columns {
		if c.autoInc && (c.kind != KindInt64 || !c.primary) {
			errs = append(errs, fmt.Errorf("schema: table %q: auto-increment requires an int64 primary-key column (%q)", b.name, c.name))
		}
	}
	for _, set := range b.uniques {
		cols := make([]*column, 0, len(set))
		for _, cd := range set {
			c, err := t.member(cd)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cols = append(cols, c)
		}
		if len(cols) == len(set) {
			t.uniques = append(t.uniques, cols)
		}
	}
	seenIdx := make(map[string]bool, len(b.indexes))
	for _, decl := range b.indexes {
		if !validName(decl.name) {
			errs = append(errs, fmt.Errorf("schema: table %q: invalid index name %q", b.name, decl.name))
			continue
		}
		if seenIdx[decl.name] {
			errs = append(errs, fmt.Errorf("schema: table %q: duplicate index %q", b.name, decl.name))
			continue
		}
		seenIdx[decl.name] = true
		idx := &Index{name: decl.name, unique: decl.unique}
		for _, cd := range decl.columns {
			c, err := t.member(cd)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			idx.columns = append(idx.columns, c)
		}
		if len(idx.columns) == len(decl.columns) {
			t.indexes = append(t.indexes, idx)
		}
	}
	for _, c := range t.columns {
		if c.ref == nil {
			continue
		}
		target := c.ref.target
		if target.table == nil {
			errs = append(errs, fmt.Errorf("schema: table %q: column %q references a column not attached to a table", b.name, c.name))
			continue
		}
		if c.kind != target.kind {
			errs = append(errs, fmt.Errorf("schema: table %q: column %q (%s) references %s column %q.%q", b.name, c.name, c.kind, target.kind, target.table.name, target.name))
		}
		if !target.table.uniqueColumn(target) {
			errs = append(errs, fmt.Errorf("schema: table %q: column %q references non-unique column %q.%q", b.name, c.name, target.table.name, target.name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, c := range t.columns {
		c.table = t
	}
	return t, nil
}

func (t *Table) member(cd ColumnDef) (*column, error) {
	c := cd.def()
	if member, ok := t.byName[c.name]; ok && member == c {
		return c, nil
	}
	return nil, fmt.Errorf("schema: table %q: column %q is not declared on this table", t.name, c.name)
}

// uniqueColumn reports whether the column is unique on its table: a
// unique column, the single-column primary key, or the sole column of a
// unique index or constraint.
func (t *Table) uniqueColumn(c *column) bool {
	if c.unique {
		return true
	}
	if len(t.primary) == 1 && t.primary[0] == c {
		return true
	}
	for _, set := range t.uniques {
		if len(set) == 1 && set[0] == c {
			return true
		}
	}
	for _, idx := range t.indexes {
		if idx.unique && len(idx.columns) == 1 && idx.columns[0] == c {
			return true
		}
	}
	return false
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// SelectTable returns a reference to the table usable in FROM and JOIN
// clauses.
func (t *Table) SelectTable() *sql.SelectTable {
	return sql.Table(t.name)
}

// View is a named, immutable wrapper over a compiled selection. Views
// are queryable like read-only tables and carry no writable columns.
type View struct {
	name     string
	selector *sql.Selector
}

// NewView declares a view over the given selection. The selection must
// compile without bind parameters.
func NewView(name string, s *sql.Selector) (*View, error) {
	if !validName(name) {
		return nil, fmt.Errorf("schema: invalid view name %q", name)
	}
	if s == nil {
		return nil, fmt.Errorf("schema: view %q without a selection", name)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("schema: view %q: %w", name, err)
	}
	if _, args := s.Query(); len(args) > 0 {
		return nil, fmt.Errorf("schema: view %q: selection carries %d bind parameters", name, len(args))
	}
	return &View{name: name, selector: s}, nil
}

// Name returns the view name.
func (v *View) Name() string { return v.name }

// SelectTable returns a reference to the view usable in FROM clauses.
func (v *View) SelectTable() *sql.SelectTable {
	return sql.Table(v.name)
}

// Schema is the full declared schema with its version. The version is
// compared with the stored version record when a coordinator opens.
type Schema struct {
	Version int
	Tables  []*Table
	Views   []*View
}

// Validate checks schema-level invariants: a positive version and
// unique table and view names.
func (s *Schema) Validate() error {
	var errs []error
	if s.Version <= 0 {
		errs = append(errs, fmt.Errorf("schema: version must be positive, got %d", s.Version))
	}
	seen := make(map[string]bool, len(s.Tables)+len(s.Views))
	for _, t := range s.Tables {
		if seen[t.name] {
			errs = append(errs, fmt.Errorf("schema: duplicate table %q", t.name))
		}
		seen[t.name] = true
	}
	for _, v := range s.Views {
		if seen[v.name] {
			errs = append(errs, fmt.Errorf("schema: duplicate view %q", v.name))
		}
		seen[v.name] = true
	}
	tables := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		tables[t.name] = true
	}
	for _, t := range s.Tables {
		for _, c := range t.columns {
			if c.ref != nil && c.ref.target.table != nil && !tables[c.ref.target.table.name] {
				errs = append(errs, fmt.Errorf("schema: table %q: foreign key on %q references table %q outside this schema", t.name, c.name, c.ref.target.table.name))
			}
		}
	}
	return errors.Join(errs...)
}
