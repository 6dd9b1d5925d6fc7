package sql

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/relic/dialect"
)

// Querier wraps the Query method implemented by all statement builders.
// Query returns the compiled SQL text and its bind arguments, in the
// left-to-right order the placeholders appear in the text.
type Querier interface {
	Query() (string, []any)
}

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isIdent reports whether s is a plain SQL identifier.
func isIdent(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Builder is the low-level fragment writer shared by the statement
// builders and the expression tree. Compilation is a recursive descent
// over nodes; every node writes exactly one fixed textual template and
// appends its bind values in the order they appear in the text.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
	tables  []string
	qualify bool // qualify column references with their table
	errs    []error
}

// NewBuilder returns a fresh builder for the given dialect.
func NewBuilder(dialect string) *Builder {
	return &Builder{dialect: dialect}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// Quote quotes the given identifier with the dialect quote character.
func (b *Builder) Quote(ident string) string {
	quote := "`"
	if b.dialect == dialect.Postgres {
		quote = `"`
	}
	return quote + ident + quote
}

// Ident writes the given string as a quoted identifier. Dotted pairs are
// quoted part-wise ("table"."column"). Strings that are not plain
// identifiers (functions, "*", aliased or suffixed expressions) are
// written as-is.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "":
		b.AddError(errors.New("sql: empty identifier"))
	case s == "*" || !strings.ContainsAny(s, ".") && isIdent(s):
		if s == "*" {
			b.WriteString(s)
		} else {
			b.WriteString(b.Quote(s))
		}
	case strings.Count(s, ".") == 1:
		table, column, _ := strings.Cut(s, ".")
		if isIdent(table) && (isIdent(column) || column == "*") {
			b.WriteString(b.Quote(table))
			b.WriteByte('.')
			if column == "*" {
				b.WriteString(column)
			} else {
				b.WriteString(b.Quote(column))
			}
			return b
		}
		fallthrough
	default:
		// Not a plain identifier. Assume the caller supplied a valid
		// expression fragment (e.g. "COUNT(*)", "name ASC").
		b.WriteString(s)
	}
	return b
}

// Arg appends the given value to the bind list and writes its
// placeholder. The placeholder form depends on the dialect.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.WriteByte('?')
	}
	return b
}

// Args appends a comma-separated list of placeholders and bind values.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.Comma()
		}
		b.Arg(v)
	}
	return b
}

// WriteString appends s to the compiled text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the compiled text.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad writes a single space.
func (b *Builder) Pad() *Builder { return b.WriteByte(' ') }

// Comma writes a comma and a space.
func (b *Builder) Comma() *Builder { return b.WriteString(", ") }

// Wrap wraps the output of f in parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	b.WriteByte(')')
	return b
}

// IdentComma writes a comma-separated list of identifiers.
func (b *Builder) IdentComma(ids ...string) *Builder {
	for i, s := range ids {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s)
	}
	return b
}

// AddError records a construction error. It is surfaced by Err and
// blocks execution of the statement; compilation never degrades to a
// silent empty fragment.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the accumulated construction errors, if any.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// addTable records a table read by the compiled statement.
func (b *Builder) addTable(name string) {
	for _, t := range b.tables {
		if t == name {
			return
		}
	}
	b.tables = append(b.tables, name)
}

// Tables returns the tables read by the compiled statement, in
// first-use order.
func (b *Builder) Tables() []string { return b.tables }

// String returns the compiled SQL text.
func (b *Builder) String() string { return b.sb.String() }

// Query returns the compiled SQL text and the ordered bind values.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// An Assignment is a single column-to-value pair of an INSERT or UPDATE
// statement. Typed assignments are produced by the schema column tokens;
// building one from a raw column name is the documented escape hatch and
// is validated when the statement compiles.
type Assignment struct {
	Column string
	Value  any
}

// fmtError is a shorthand used by the builders.
func fmtError(format string, v ...any) error {
	return fmt.Errorf("sql: "+format, v...)
}
