// Package schema provides the declarative table model: typed column
// tokens, table and view construction, deterministic DDL rendering, and
// migration diff validation.
//
// Tables are declared once and validated at Build time:
//
//	id := schema.Int64("id").Primary().AutoIncrement()
//	name := schema.Text("name").Unique()
//	users, err := schema.NewTable("users").
//	    Columns(id, name).
//	    Build()
//
// A malformed declaration (duplicate columns, two primary keys, a
// foreign key to a non-unique column) is reported by Build, never at
// execution time. After Build the column tokens double as typed query
// helpers:
//
//	sel := sql.Dialect(dialect.SQLite).
//	    Select("id").
//	    From(users.SelectTable()).
//	    Where(name.EQ("Bob"))
//
// The token's Go type flows into every predicate and assignment built
// from it, so mismatched value types fail to compile.
package schema
