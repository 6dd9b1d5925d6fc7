// Package sql provides the typed expression tree, the statement
// builders, and the SQL compiler sitting between the schema model and a
// dialect.Driver.
//
// # Compilation model
//
// Every statement builder and expression node compiles by recursive
// descent into a Builder. Each node has one fixed textual template;
// bound values append exactly one placeholder to the text and one entry
// to the bind list, in left-to-right tree order. Compiling the same
// builder state twice yields identical (text, binds) output.
//
//	q, args := sql.Dialect(dialect.SQLite).
//	    Select("id", "name").
//	    From(sql.Table("users")).
//	    Where(sql.EQ("id", 1)).
//	    Query()
//
// Malformed statements (unknown conflict policy, delete without a
// predicate, join without ON) surface through the builder's Err method
// before execution, never as a silent empty fragment.
//
// # Typed expressions
//
// Expr[T] tags every node with its SQL value type at compile time:
//
//	total := sql.Sum(sql.C[int64]("amount"))
//	pred := sql.C[string]("name").EQ(sql.Value("Bob"))
//
// Arithmetic requires a Numeric type parameter and boolean trees feed
// WHERE and HAVING. The string-keyed helpers (EQ, Like, ...) are the
// runtime-validated escape hatch for dynamic column names.
package sql
