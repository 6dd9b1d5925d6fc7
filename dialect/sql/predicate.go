package sql

// Untyped predicate helpers keyed by a raw column name. They are the
// documented escape hatch next to the typed schema column tokens: the
// column name is validated when the statement compiles, not at
// construction. The typed tokens in the schema package build the same
// tree with compile-time value-type checking.

func rawColumn(name string) Node {
	return Expr[any]{fn: func(b *Builder) {
		if isIdent(name) || isQualified(name) {
			b.Ident(name)
			return
		}
		b.AddError(fmtError("invalid column %q", name))
	}}
}

func isQualified(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return isIdent(s[:i]) && isIdent(s[i+1:])
		}
	}
	return false
}

func compare(col string, op string, v any) P {
	return P{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" " + op + " ")
			b.Arg(v)
		})
	}}
}

// EQ returns a "column = value" predicate.
func EQ(col string, v any) P { return compare(col, "=", v) }

// NEQ returns a "column <> value" predicate.
func NEQ(col string, v any) P { return compare(col, "<>", v) }

// GT returns a "column > value" predicate.
func GT(col string, v any) P { return compare(col, ">", v) }

// GTE returns a "column >= value" predicate.
func GTE(col string, v any) P { return compare(col, ">=", v) }

// LT returns a "column < value" predicate.
func LT(col string, v any) P { return compare(col, "<", v) }

// LTE returns a "column <= value" predicate.
func LTE(col string, v any) P { return compare(col, "<=", v) }

// In returns a "column IN (...)" predicate. An empty list compiles to
// FALSE, matching no rows.
func In(col string, vs ...any) P {
	return P{fn: func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" IN ")
			b.Wrap(func(b *Builder) {
				b.Args(vs...)
			})
		})
	}}
}

// NotIn returns a "column NOT IN (...)" predicate. An empty list
// compiles to TRUE, matching all rows.
func NotIn(col string, vs ...any) P {
	return P{fn: func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" NOT IN ")
			b.Wrap(func(b *Builder) {
				b.Args(vs...)
			})
		})
	}}
}

// Like returns a "column LIKE pattern" predicate.
func Like(col, pattern string) P {
	return P{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" LIKE ")
			b.Arg(pattern)
		})
	}}
}

// Contains returns a predicate matching columns that contain the given
// substring.
func Contains(col, sub string) P { return Like(col, "%"+escapeLike(sub)+"%") }

// HasPrefix returns a predicate matching columns with the given prefix.
func HasPrefix(col, prefix string) P { return Like(col, escapeLike(prefix)+"%") }

// HasSuffix returns a predicate matching columns with the given suffix.
func HasSuffix(col, suffix string) P { return Like(col, "%"+escapeLike(suffix)) }

// EscapeLike escapes the LIKE wildcards in a literal substring.
func EscapeLike(s string) string { return escapeLike(s) }

// escapeLike escapes the LIKE wildcards in a literal substring.
func escapeLike(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '%' || c == '_' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// IsNull returns a "column IS NULL" predicate.
func IsNull(col string) P {
	return P{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" IS NULL")
		})
	}}
}

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(col string) P {
	return P{fn: func(b *Builder) {
		b.Wrap(func(b *Builder) {
			rawColumn(col).emit(b)
			b.WriteString(" IS NOT NULL")
		})
	}}
}

// ColumnsEQ returns a "column = column" predicate. Join ON clauses are
// built from it.
func ColumnsEQ(col1, col2 string) P {
	return P{fn: func(b *Builder) {
		rawColumn(col1).emit(b)
		b.WriteString(" = ")
		rawColumn(col2).emit(b)
	}}
}

// And returns the conjunction of the given predicates.
func And(ps ...P) P {
	return connective("AND", ps)
}

// Or returns the disjunction of the given predicates.
func Or(ps ...P) P {
	return connective("OR", ps)
}

func connective(op string, ps []P) P {
	return P{fn: func(b *Builder) {
		switch len(ps) {
		case 0:
			b.AddError(fmtError("empty %s connective", op))
		case 1:
			ps[0].emit(b)
		default:
			b.Wrap(func(b *Builder) {
				for i, p := range ps {
					if i > 0 {
						b.WriteString(" " + op + " ")
					}
					p.emit(b)
				}
			})
		}
	}}
}

// Not negates the given predicate.
func Not(p P) P {
	return P{fn: func(b *Builder) {
		b.WriteString("NOT ")
		b.Wrap(p.emit)
	}}
}

// True returns a predicate that matches every row. It lets callers say
// "match everything" explicitly; deleting all rows still requires
// DeleteBuilder.AllRows.
func True() P {
	return P{fn: func(b *Builder) { b.WriteString("TRUE") }}
}
