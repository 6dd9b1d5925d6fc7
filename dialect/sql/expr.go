package sql

import (
	"strings"

	"github.com/syssam/relic/dialect"
)

// Node is a compilable fragment of an expression tree. All expression
// values in this package implement it; external packages compose trees
// through the exported constructors only.
type Node interface {
	emit(*Builder)
}

// Expr is a typed expression node. The type parameter tags the SQL value
// type of the node at compile time: comparisons require both sides to
// share a tag, arithmetic requires a numeric tag, and boolean trees feed
// WHERE and HAVING clauses. The zero Expr is invalid and fails
// compilation with a construction error.
type Expr[T any] struct {
	fn func(*Builder)
}

func (e Expr[T]) emit(b *Builder) {
	if e.fn == nil {
		b.AddError(fmtError("empty expression"))
		return
	}
	e.fn(b)
}

// P is a boolean predicate expression.
type P = Expr[bool]

// Value returns a bound-parameter leaf. It compiles to exactly one
// placeholder and appends exactly one entry to the bind list.
func Value[T any](v T) Expr[T] {
	return Expr[T]{fn: func(b *Builder) { b.Arg(v) }}
}

// C returns a typed column-reference leaf. When the enclosing statement
// carries joins, the reference compiles to the qualified "table"."column"
// form; otherwise to the bare column name.
func C[T any](column string, table ...string) Expr[T] {
	var qualifier string
	if len(table) > 0 {
		qualifier = table[0]
	}
	return Expr[T]{fn: func(b *Builder) {
		if !isIdent(column) {
			b.AddError(fmtError("invalid column %q", column))
			return
		}
		if b.qualify && qualifier != "" {
			b.Ident(qualifier + "." + column)
			return
		}
		b.Ident(column)
	}}
}

// Raw returns an expression compiled from a raw SQL fragment with
// positional "?" placeholders. It is the documented escape hatch for
// engine-specific expressions the typed tree cannot represent. The
// placeholders are re-bound with the dialect placeholder form, so the
// fragment stays portable.
func Raw[T any](fragment string, args ...any) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		rest := fragment
		for _, v := range args {
			before, after, ok := strings.Cut(rest, "?")
			if !ok {
				b.AddError(fmtError("raw fragment %q has fewer placeholders than arguments", fragment))
				return
			}
			b.WriteString(before)
			b.Arg(v)
			rest = after
		}
		if strings.Contains(rest, "?") {
			b.AddError(fmtError("raw fragment %q has more placeholders than arguments", fragment))
			return
		}
		b.WriteString(rest)
	}}
}

func binary[T any](l Node, op string, r Node) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			l.emit(b)
			b.WriteString(" " + op + " ")
			r.emit(b)
		})
	}}
}

// EQ returns an equality predicate between two expressions of one type.
func (e Expr[T]) EQ(other Expr[T]) Expr[bool] { return binary[bool](e, "=", other) }

// NEQ returns an inequality predicate.
func (e Expr[T]) NEQ(other Expr[T]) Expr[bool] { return binary[bool](e, "<>", other) }

// GT returns a "greater than" predicate.
func (e Expr[T]) GT(other Expr[T]) Expr[bool] { return binary[bool](e, ">", other) }

// GTE returns a "greater than or equal" predicate.
func (e Expr[T]) GTE(other Expr[T]) Expr[bool] { return binary[bool](e, ">=", other) }

// LT returns a "less than" predicate.
func (e Expr[T]) LT(other Expr[T]) Expr[bool] { return binary[bool](e, "<", other) }

// LTE returns a "less than or equal" predicate.
func (e Expr[T]) LTE(other Expr[T]) Expr[bool] { return binary[bool](e, "<=", other) }

// In returns a membership predicate over the given values. An empty
// value list compiles to FALSE, matching no rows.
func (e Expr[T]) In(vs ...T) Expr[bool] {
	return Expr[bool]{fn: func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Wrap(func(b *Builder) {
			e.emit(b)
			b.WriteString(" IN ")
			b.Wrap(func(b *Builder) {
				for i, v := range vs {
					if i > 0 {
						b.Comma()
					}
					b.Arg(v)
				}
			})
		})
	}}
}

// IsNull returns a NULL-check predicate.
func (e Expr[T]) IsNull() Expr[bool] {
	return Expr[bool]{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			e.emit(b)
			b.WriteString(" IS NULL")
		})
	}}
}

// NotNull returns a NOT NULL-check predicate.
func (e Expr[T]) NotNull() Expr[bool] {
	return Expr[bool]{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			e.emit(b)
			b.WriteString(" IS NOT NULL")
		})
	}}
}

// Numeric is the constraint of the arithmetic operators.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Add returns the sum of two numeric expressions.
func Add[T Numeric](l, r Expr[T]) Expr[T] { return binary[T](l, "+", r) }

// Sub returns the difference of two numeric expressions.
func Sub[T Numeric](l, r Expr[T]) Expr[T] { return binary[T](l, "-", r) }

// Mul returns the product of two numeric expressions.
func Mul[T Numeric](l, r Expr[T]) Expr[T] { return binary[T](l, "*", r) }

// Div returns the quotient of two numeric expressions.
func Div[T Numeric](l, r Expr[T]) Expr[T] { return binary[T](l, "/", r) }

// Neg returns the negation of a numeric expression.
func Neg[T Numeric](e Expr[T]) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			b.WriteString("-")
			e.emit(b)
		})
	}}
}

func fn1[T any](name string, arg Node) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		b.WriteString(name)
		b.Wrap(arg.emit)
	}}
}

// Lower returns the lower-case form of a text expression.
func Lower(e Expr[string]) Expr[string] { return fn1[string]("LOWER", e) }

// Upper returns the upper-case form of a text expression.
func Upper(e Expr[string]) Expr[string] { return fn1[string]("UPPER", e) }

// Length returns the character length of a text expression.
func Length(e Expr[string]) Expr[int64] { return fn1[int64]("LENGTH", e) }

// Concat returns the concatenation of text expressions, using the
// dialect concatenation form.
func Concat(parts ...Expr[string]) Expr[string] {
	return Expr[string]{fn: func(b *Builder) {
		if len(parts) == 0 {
			b.AddError(fmtError("concat of zero expressions"))
			return
		}
		if b.dialect == dialect.MySQL {
			b.WriteString("CONCAT")
			b.Wrap(func(b *Builder) {
				for i, p := range parts {
					if i > 0 {
						b.Comma()
					}
					p.emit(b)
				}
			})
			return
		}
		b.Wrap(func(b *Builder) {
			for i, p := range parts {
				if i > 0 {
					b.WriteString(" || ")
				}
				p.emit(b)
			}
		})
	}}
}

// LikeExpr returns a pattern-match predicate over a text expression.
func LikeExpr(e Expr[string], pattern string) Expr[bool] {
	return Expr[bool]{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			e.emit(b)
			b.WriteString(" LIKE ")
			b.Arg(pattern)
		})
	}}
}

// Count returns the COUNT aggregate of the given expression.
func Count[T any](e Expr[T]) Expr[int64] { return fn1[int64]("COUNT", e) }

// CountAll returns the COUNT(*) aggregate.
func CountAll() Expr[int64] {
	return Expr[int64]{fn: func(b *Builder) { b.WriteString("COUNT(*)") }}
}

// Sum returns the SUM aggregate of a numeric expression.
func Sum[T Numeric](e Expr[T]) Expr[T] { return fn1[T]("SUM", e) }

// Avg returns the AVG aggregate of a numeric expression.
func Avg[T Numeric](e Expr[T]) Expr[float64] { return fn1[float64]("AVG", e) }

// Min returns the MIN aggregate.
func Min[T any](e Expr[T]) Expr[T] { return fn1[T]("MIN", e) }

// Max returns the MAX aggregate.
func Max[T any](e Expr[T]) Expr[T] { return fn1[T]("MAX", e) }

// Fn returns a call of the named SQL function over the given arguments.
// The arguments compile recursively with the same placeholder rules as
// any other node.
func Fn[T any](name string, args ...Node) Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		if !isIdent(name) {
			b.AddError(fmtError("invalid function name %q", name))
			return
		}
		b.WriteString(name)
		b.Wrap(func(b *Builder) {
			for i, a := range args {
				if i > 0 {
					b.Comma()
				}
				a.emit(b)
			}
		})
	}}
}

// CaseExpr builds a CASE expression with a fixed result type.
type CaseExpr[T any] struct {
	whens []struct {
		cond Expr[bool]
		then Expr[T]
	}
	els  Expr[T]
	some bool // an ELSE arm was set
}

// Case starts a new CASE expression.
func Case[T any]() *CaseExpr[T] { return &CaseExpr[T]{} }

// When adds a WHEN/THEN arm.
func (c *CaseExpr[T]) When(cond Expr[bool], then Expr[T]) *CaseExpr[T] {
	c.whens = append(c.whens, struct {
		cond Expr[bool]
		then Expr[T]
	}{cond, then})
	return c
}

// Else sets the ELSE arm.
func (c *CaseExpr[T]) Else(e Expr[T]) *CaseExpr[T] {
	c.els = e
	c.some = true
	return c
}

// End returns the compiled CASE expression. A CASE without WHEN arms is
// a construction error.
func (c *CaseExpr[T]) End() Expr[T] {
	return Expr[T]{fn: func(b *Builder) {
		if len(c.whens) == 0 {
			b.AddError(fmtError("case expression without when arms"))
			return
		}
		b.WriteString("CASE")
		for _, w := range c.whens {
			b.WriteString(" WHEN ")
			w.cond.emit(b)
			b.WriteString(" THEN ")
			w.then.emit(b)
		}
		if c.some {
			b.WriteString(" ELSE ")
			c.els.emit(b)
		}
		b.WriteString(" END")
	}}
}
