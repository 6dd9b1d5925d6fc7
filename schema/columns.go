package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/relic/dialect/sql"
)

// The typed column tokens. Each kind carries its Go value type, so a
// predicate or assignment built from a token is value-type checked at
// compile time. Predicates built before the column is attached to a
// table compile unqualified.

func colExpr[T any](c *column) sql.Expr[T] {
	return sql.C[T](c.name, c.TableName())
}

// Int64Column is a 64-bit integer column token.
type Int64Column struct{ *column }

// Int64 declares a 64-bit integer column.
func Int64(name string) *Int64Column {
	return &Int64Column{&column{name: name, kind: KindInt64}}
}

func (c *Int64Column) def() *column { return c.column }
func (c *Int64Column) typed(int64) {}

// Primary marks the column as the primary key.
func (c *Int64Column) Primary() *Int64Column {
	c.primary = true
	return c
}

// AutoIncrement marks the column as auto-incrementing. Only valid on an
// int64 primary key.
func (c *Int64Column) AutoIncrement() *Int64Column {
	c.autoInc = true
	return c
}

// Unique adds a single-column unique constraint.
func (c *Int64Column) Unique() *Int64Column {
	c.unique = true
	return c
}

// Nillable makes the column accept NULL.
func (c *Int64Column) Nillable() *Int64Column {
	c.nullable = true
	return c
}

// Default sets the column default value.
func (c *Int64Column) Default(v int64) *Int64Column {
	c.hasDefault = true
	c.defaultVal = v
	return c
}

// References declares a foreign key to the given column. The target
// must be unique on its table.
func (c *Int64Column) References(target *Int64Column) *Int64Column {
	c.setRef(target.column)
	return c
}

// OnDelete sets the ON DELETE action of the reference.
func (c *Int64Column) OnDelete(a RefAction) *Int64Column {
	c.setRefAction(func(r *reference) { r.onDelete = a })
	return c
}

// OnUpdate sets the ON UPDATE action of the reference.
func (c *Int64Column) OnUpdate(a RefAction) *Int64Column {
	c.setRefAction(func(r *reference) { r.onUpdate = a })
	return c
}

// Expr returns the column as a typed expression.
func (c *Int64Column) Expr() sql.Expr[int64] { return colExpr[int64](c.column) }

// EQ returns a "column = value" predicate.
func (c *Int64Column) EQ(v int64) sql.P { return c.Expr().EQ(sql.Value(v)) }

// NEQ returns a "column <> value" predicate.
func (c *Int64Column) NEQ(v int64) sql.P { return c.Expr().NEQ(sql.Value(v)) }

// GT returns a "column > value" predicate.
func (c *Int64Column) GT(v int64) sql.P { return c.Expr().GT(sql.Value(v)) }

// GTE returns a "column >= value" predicate.
func (c *Int64Column) GTE(v int64) sql.P { return c.Expr().GTE(sql.Value(v)) }

// LT returns a "column < value" predicate.
func (c *Int64Column) LT(v int64) sql.P { return c.Expr().LT(sql.Value(v)) }

// LTE returns a "column <= value" predicate.
func (c *Int64Column) LTE(v int64) sql.P { return c.Expr().LTE(sql.Value(v)) }

// In returns a membership predicate. An empty list matches no rows.
func (c *Int64Column) In(vs ...int64) sql.P { return c.Expr().In(vs...) }

// IsNull returns a NULL-check predicate.
func (c *Int64Column) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *Int64Column) NotNull() sql.P { return c.Expr().NotNull() }

// EQCol returns a "column = column" predicate against another integer
// column, for join conditions.
func (c *Int64Column) EQCol(other *Int64Column) sql.P {
	return c.Expr().EQ(other.Expr())
}

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *Int64Column) Set(v int64) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// Asc returns an ascending order term.
func (c *Int64Column) Asc() string { return sql.Asc(c.name) }

// Desc returns a descending order term.
func (c *Int64Column) Desc() string { return sql.Desc(c.name) }

// FloatColumn is a double-precision floating-point column token.
type FloatColumn struct{ *column }

// Float declares a double-precision floating-point column.
func Float(name string) *FloatColumn {
	return &FloatColumn{&column{name: name, kind: KindFloat}}
}

func (c *FloatColumn) def() *column  { return c.column }
func (c *FloatColumn) typed(float64) {}

// Unique adds a single-column unique constraint.
func (c *FloatColumn) Unique() *FloatColumn {
	c.unique = true
	return c
}

// Nillable makes the column accept NULL.
func (c *FloatColumn) Nillable() *FloatColumn {
	c.nullable = true
	return c
}

// Default sets the column default value.
func (c *FloatColumn) Default(v float64) *FloatColumn {
	c.hasDefault = true
	c.defaultVal = v
	return c
}

// Expr returns the column as a typed expression.
func (c *FloatColumn) Expr() sql.Expr[float64] { return colExpr[float64](c.column) }

// EQ returns a "column = value" predicate.
func (c *FloatColumn) EQ(v float64) sql.P { return c.Expr().EQ(sql.Value(v)) }

// NEQ returns a "column <> value" predicate.
func (c *FloatColumn) NEQ(v float64) sql.P { return c.Expr().NEQ(sql.Value(v)) }

// GT returns a "column > value" predicate.
func (c *FloatColumn) GT(v float64) sql.P { return c.Expr().GT(sql.Value(v)) }

// GTE returns a "column >= value" predicate.
func (c *FloatColumn) GTE(v float64) sql.P { return c.Expr().GTE(sql.Value(v)) }

// LT returns a "column < value" predicate.
func (c *FloatColumn) LT(v float64) sql.P { return c.Expr().LT(sql.Value(v)) }

// LTE returns a "column <= value" predicate.
func (c *FloatColumn) LTE(v float64) sql.P { return c.Expr().LTE(sql.Value(v)) }

// IsNull returns a NULL-check predicate.
func (c *FloatColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *FloatColumn) NotNull() sql.P { return c.Expr().NotNull() }

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *FloatColumn) Set(v float64) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// Asc returns an ascending order term.
func (c *FloatColumn) Asc() string { return sql.Asc(c.name) }

// Desc returns a descending order term.
func (c *FloatColumn) Desc() string { return sql.Desc(c.name) }

// TextColumn is a text column token.
type TextColumn struct{ *column }

// Text declares a text column.
func Text(name string) *TextColumn {
	return &TextColumn{&column{name: name, kind: KindText}}
}

func (c *TextColumn) def() *column { return c.column }
func (c *TextColumn) typed(string) {}

// Unique adds a single-column unique constraint.
func (c *TextColumn) Unique() *TextColumn {
	c.unique = true
	return c
}

// Nillable makes the column accept NULL.
func (c *TextColumn) Nillable() *TextColumn {
	c.nullable = true
	return c
}

// Default sets the column default value.
func (c *TextColumn) Default(v string) *TextColumn {
	c.hasDefault = true
	c.defaultVal = v
	return c
}

// Size caps the stored length. Dialects without a sized text type
// ignore it.
func (c *TextColumn) Size(n int) *TextColumn {
	c.size = n
	return c
}

// Collate sets the column collation.
func (c *TextColumn) Collate(name string) *TextColumn {
	c.collation = name
	return c
}

// References declares a foreign key to the given column. The target
// must be unique on its table.
func (c *TextColumn) References(target *TextColumn) *TextColumn {
	c.setRef(target.column)
	return c
}

// OnDelete sets the ON DELETE action of the reference.
func (c *TextColumn) OnDelete(a RefAction) *TextColumn {
	c.setRefAction(func(r *reference) { r.onDelete = a })
	return c
}

// OnUpdate sets the ON UPDATE action of the reference.
func (c *TextColumn) OnUpdate(a RefAction) *TextColumn {
	c.setRefAction(func(r *reference) { r.onUpdate = a })
	return c
}

// Expr returns the column as a typed expression.
func (c *TextColumn) Expr() sql.Expr[string] { return colExpr[string](c.column) }

// EQ returns a "column = value" predicate.
func (c *TextColumn) EQ(v string) sql.P { return c.Expr().EQ(sql.Value(v)) }

// NEQ returns a "column <> value" predicate.
func (c *TextColumn) NEQ(v string) sql.P { return c.Expr().NEQ(sql.Value(v)) }

// GT returns a "column > value" predicate.
func (c *TextColumn) GT(v string) sql.P { return c.Expr().GT(sql.Value(v)) }

// GTE returns a "column >= value" predicate.
func (c *TextColumn) GTE(v string) sql.P { return c.Expr().GTE(sql.Value(v)) }

// LT returns a "column < value" predicate.
func (c *TextColumn) LT(v string) sql.P { return c.Expr().LT(sql.Value(v)) }

// LTE returns a "column <= value" predicate.
func (c *TextColumn) LTE(v string) sql.P { return c.Expr().LTE(sql.Value(v)) }

// In returns a membership predicate. An empty list matches no rows.
func (c *TextColumn) In(vs ...string) sql.P { return c.Expr().In(vs...) }

// IsNull returns a NULL-check predicate.
func (c *TextColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *TextColumn) NotNull() sql.P { return c.Expr().NotNull() }

// Like returns a pattern-match predicate. The pattern is passed to the
// engine unescaped.
func (c *TextColumn) Like(pattern string) sql.P {
	return sql.LikeExpr(c.Expr(), pattern)
}

// Contains returns a predicate matching values containing the given
// substring. LIKE wildcards in the substring are escaped.
func (c *TextColumn) Contains(sub string) sql.P {
	return sql.LikeExpr(c.Expr(), "%"+sql.EscapeLike(sub)+"%")
}

// HasPrefix returns a predicate matching values with the given prefix.
func (c *TextColumn) HasPrefix(prefix string) sql.P {
	return sql.LikeExpr(c.Expr(), sql.EscapeLike(prefix)+"%")
}

// HasSuffix returns a predicate matching values with the given suffix.
func (c *TextColumn) HasSuffix(suffix string) sql.P {
	return sql.LikeExpr(c.Expr(), "%"+sql.EscapeLike(suffix))
}

// EQCol returns a "column = column" predicate against another text
// column, for join conditions.
func (c *TextColumn) EQCol(other *TextColumn) sql.P {
	return c.Expr().EQ(other.Expr())
}

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *TextColumn) Set(v string) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// Asc returns an ascending order term.
func (c *TextColumn) Asc() string { return sql.Asc(c.name) }

// Desc returns a descending order term.
func (c *TextColumn) Desc() string { return sql.Desc(c.name) }

// BoolColumn is a boolean column token.
type BoolColumn struct{ *column }

// Bool declares a boolean column.
func Bool(name string) *BoolColumn {
	return &BoolColumn{&column{name: name, kind: KindBool}}
}

func (c *BoolColumn) def() *column { return c.column }
func (c *BoolColumn) typed(bool) {}

// Nillable makes the column accept NULL.
func (c *BoolColumn) Nillable() *BoolColumn {
	c.nullable = true
	return c
}

// Default sets the column default value.
func (c *BoolColumn) Default(v bool) *BoolColumn {
	c.hasDefault = true
	c.defaultVal = v
	return c
}

// Expr returns the column as a typed expression.
func (c *BoolColumn) Expr() sql.Expr[bool] { return colExpr[bool](c.column) }

// EQ returns a "column = value" predicate.
func (c *BoolColumn) EQ(v bool) sql.P { return c.Expr().EQ(sql.Value(v)) }

// IsTrue returns the column itself as a predicate.
func (c *BoolColumn) IsTrue() sql.P { return c.Expr() }

// IsNull returns a NULL-check predicate.
func (c *BoolColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *BoolColumn) NotNull() sql.P { return c.Expr().NotNull() }

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *BoolColumn) Set(v bool) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// BytesColumn is a binary blob column token.
type BytesColumn struct{ *column }

// Bytes declares a binary blob column.
func Bytes(name string) *BytesColumn {
	return &BytesColumn{&column{name: name, kind: KindBlob}}
}

func (c *BytesColumn) def() *column { return c.column }
func (c *BytesColumn) typed([]byte) {}

// Nillable makes the column accept NULL.
func (c *BytesColumn) Nillable() *BytesColumn {
	c.nullable = true
	return c
}

// Size caps the stored length. Dialects without a sized blob type
// ignore it.
func (c *BytesColumn) Size(n int) *BytesColumn {
	c.size = n
	return c
}

// Expr returns the column as a typed expression.
func (c *BytesColumn) Expr() sql.Expr[[]byte] { return colExpr[[]byte](c.column) }

// IsNull returns a NULL-check predicate.
func (c *BytesColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *BytesColumn) NotNull() sql.P { return c.Expr().NotNull() }

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *BytesColumn) Set(v []byte) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// TimeColumn is a timestamp column token.
type TimeColumn struct{ *column }

// Time declares a timestamp column.
func Time(name string) *TimeColumn {
	return &TimeColumn{&column{name: name, kind: KindTime}}
}

func (c *TimeColumn) def() *column    { return c.column }
func (c *TimeColumn) typed(time.Time) {}

// Nillable makes the column accept NULL.
func (c *TimeColumn) Nillable() *TimeColumn {
	c.nullable = true
	return c
}

// Expr returns the column as a typed expression.
func (c *TimeColumn) Expr() sql.Expr[time.Time] { return colExpr[time.Time](c.column) }

// EQ returns a "column = value" predicate.
func (c *TimeColumn) EQ(v time.Time) sql.P { return c.Expr().EQ(sql.Value(v)) }

// GT returns a "column > value" predicate.
func (c *TimeColumn) GT(v time.Time) sql.P { return c.Expr().GT(sql.Value(v)) }

// GTE returns a "column >= value" predicate.
func (c *TimeColumn) GTE(v time.Time) sql.P { return c.Expr().GTE(sql.Value(v)) }

// LT returns a "column < value" predicate.
func (c *TimeColumn) LT(v time.Time) sql.P { return c.Expr().LT(sql.Value(v)) }

// LTE returns a "column <= value" predicate.
func (c *TimeColumn) LTE(v time.Time) sql.P { return c.Expr().LTE(sql.Value(v)) }

// IsNull returns a NULL-check predicate.
func (c *TimeColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *TimeColumn) NotNull() sql.P { return c.Expr().NotNull() }

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *TimeColumn) Set(v time.Time) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}

// Asc returns an ascending order term.
func (c *TimeColumn) Asc() string { return sql.Asc(c.name) }

// Desc returns a descending order term.
func (c *TimeColumn) Desc() string { return sql.Desc(c.name) }

// UUIDColumn is a UUID column token. SQLite and MySQL store it in its
// canonical text form; Postgres uses the native uuid type.
type UUIDColumn struct{ *column }

// UUID declares a UUID column.
func UUID(name string) *UUIDColumn {
	return &UUIDColumn{&column{name: name, kind: KindUUID}}
}

func (c *UUIDColumn) def() *column    { return c.column }
func (c *UUIDColumn) typed(uuid.UUID) {}

// Primary marks the column as the primary key.
func (c *UUIDColumn) Primary() *UUIDColumn {
	c.primary = true
	return c
}

// Unique adds a single-column unique constraint.
func (c *UUIDColumn) Unique() *UUIDColumn {
	c.unique = true
	return c
}

// Nillable makes the column accept NULL.
func (c *UUIDColumn) Nillable() *UUIDColumn {
	c.nullable = true
	return c
}

// References declares a foreign key to the given column. The target
// must be unique on its table.
func (c *UUIDColumn) References(target *UUIDColumn) *UUIDColumn {
	c.setRef(target.column)
	return c
}

// OnDelete sets the ON DELETE action of the reference.
func (c *UUIDColumn) OnDelete(a RefAction) *UUIDColumn {
	c.setRefAction(func(r *reference) { r.onDelete = a })
	return c
}

// OnUpdate sets the ON UPDATE action of the reference.
func (c *UUIDColumn) OnUpdate(a RefAction) *UUIDColumn {
	c.setRefAction(func(r *reference) { r.onUpdate = a })
	return c
}

// Expr returns the column as a typed expression.
func (c *UUIDColumn) Expr() sql.Expr[uuid.UUID] { return colExpr[uuid.UUID](c.column) }

// EQ returns a "column = value" predicate.
func (c *UUIDColumn) EQ(v uuid.UUID) sql.P { return c.Expr().EQ(sql.Value(v)) }

// NEQ returns a "column <> value" predicate.
func (c *UUIDColumn) NEQ(v uuid.UUID) sql.P { return c.Expr().NEQ(sql.Value(v)) }

// In returns a membership predicate. An empty list matches no rows.
func (c *UUIDColumn) In(vs ...uuid.UUID) sql.P { return c.Expr().In(vs...) }

// IsNull returns a NULL-check predicate.
func (c *UUIDColumn) IsNull() sql.P { return c.Expr().IsNull() }

// NotNull returns a NOT NULL-check predicate.
func (c *UUIDColumn) NotNull() sql.P { return c.Expr().NotNull() }

// EQCol returns a "column = column" predicate against another UUID
// column, for join conditions.
func (c *UUIDColumn) EQCol(other *UUIDColumn) sql.P {
	return c.Expr().EQ(other.Expr())
}

// Set returns an assignment of the column for INSERT and UPDATE.
func (c *UUIDColumn) Set(v uuid.UUID) sql.Assignment {
	return sql.Assignment{Column: c.name, Value: v}
}
