package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relic/dialect"
	"github.com/syssam/relic/dialect/sql"
)

func TestBuildTable(t *testing.T) {
	t.Parallel()
	id := Int64("id").Primary().AutoIncrement()
	name := Text("name").Unique()
	age := Int64("age").Nillable()
	users, err := NewTable("users").
		Columns(id, name, age).
		Index("users_age", age).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "users", users.Name())
	assert.Equal(t, []string{"id", "name", "age"}, users.ColumnNames())
	assert.Equal(t, "users", id.TableName())
}

func TestBuildDuplicateColumn(t *testing.T) {
	t.Parallel()
	_, err := NewTable("users").
		Columns(Int64("id"), Text("id")).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "id"`)
}

func TestBuildColumnReuse(t *testing.T) {
	t.Parallel()
	id := Int64("id").Primary()
	_, err := NewTable("users").Columns(id).Build()
	require.NoError(t, err)
	_, err = NewTable("groups").Columns(id).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already belongs")
}

func TestBuildTwoPrimaryKeys(t *testing.T) {
	t.Parallel()
	_, err := NewTable("users").
		Columns(Int64("a").Primary(), Int64("b").Primary()).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple column-level primary keys")
}

func TestBuildPrimaryKeyDeclaredTwice(t *testing.T) {
	t.Parallel()
	a := Int64("a").Primary()
	b := Int64("b")
	_, err := NewTable("t").Columns(a, b).PrimaryKey(b).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary key declared twice")
}

func TestBuildCompositePrimaryKey(t *testing.T) {
	t.Parallel()
	a, b := Int64("a"), Int64("b")
	tbl, err := NewTable("pairs").Columns(a, b).PrimaryKey(a, b).Build()
	require.NoError(t, err)
	ddl, err := tbl.CreateSQL(dialect.SQLite)
	require.NoError(t, err)
	assert.Contains(t, ddl, "PRIMARY KEY (`a`, `b`)")
}

func TestBuildAutoIncrementRules(t *testing.T) {
	t.Parallel()
	_, err := NewTable("t").
		Columns(Int64("n").AutoIncrement()).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auto-increment requires an int64 primary-key column")
}

func TestBuildForeignKeyTargetMustBeUnique(t *testing.T) {
	t.Parallel()
	age := Int64("age")
	_, err := NewTable("users").Columns(Int64("id").Primary(), age).Build()
	require.NoError(t, err)

	_, err = NewTable("pets").
		Columns(Int64("id").Primary(), Int64("owner_age").References(age)).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-unique column")
}

func TestBuildForeignKey(t *testing.T) {
	t.Parallel()
	uid := Int64("id").Primary()
	_, err := NewTable("users").Columns(uid).Build()
	require.NoError(t, err)

	owner := Int64("owner_id").References(uid).OnDelete(Cascade)
	pets, err := NewTable("pets").
		Columns(Int64("id").Primary(), owner).
		Build()
	require.NoError(t, err)

	ddl, err := pets.CreateSQL(dialect.SQLite)
	require.NoError(t, err)
	assert.Contains(t, ddl, "REFERENCES `users`(`id`) ON DELETE CASCADE")
}

func TestBuildForeignKeyDetachedTarget(t *testing.T) {
	t.Parallel()
	loose := Int64("id").Unique()
	_, err := NewTable("pets").
		Columns(Int64("owner_id").References(loose)).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not attached to a table")
}

func TestBuildIndexForeignColumn(t *testing.T) {
	t.Parallel()
	other := Int64("x")
	_, err := NewTable("a").Columns(other).Build()
	require.NoError(t, err)

	_, err = NewTable("b").
		Columns(Int64("id")).
		Index("b_x", other).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared on this table")
}

func TestBuildInvalidNames(t *testing.T) {
	t.Parallel()
	_, err := NewTable("users; --").Columns(Int64("id")).Build()
	require.Error(t, err)

	_, err = NewTable("users").Columns(Int64("id"), Text("drop table")).Build()
	require.Error(t, err)
}

func TestTypedPredicates(t *testing.T) {
	t.Parallel()
	id := Int64("id").Primary()
	name := Text("name")
	users, err := NewTable("users").Columns(id, name).Build()
	require.NoError(t, err)

	query, args := sql.Dialect(dialect.SQLite).
		Select("id").
		From(users.SelectTable()).
		Where(sql.And(name.EQ("Bob"), id.GT(10))).
		Query()
	assert.Equal(t, "SELECT `id` FROM `users` WHERE ((`name` = ?) AND (`id` > ?))", query)
	assert.Equal(t, []any{"Bob", int64(10)}, args)
}

func TestTypedPredicatesQualifyInJoins(t *testing.T) {
	t.Parallel()
	uid := Int64("id").Primary()
	uname := Text("name")
	users, err := NewTable("users").Columns(uid, uname).Build()
	require.NoError(t, err)

	pid := Int64("id").Primary()
	powner := Int64("owner_id").References(uid)
	pets, err := NewTable("pets").Columns(pid, powner).Build()
	require.NoError(t, err)

	query, args := sql.Dialect(dialect.SQLite).
		Select("users.name").
		From(users.SelectTable()).
		Join(pets.SelectTable()).
		OnP(powner.EQCol(uid)).
		Where(uname.EQ("Bob")).
		Query()
	assert.Equal(t, "SELECT `users`.`name` FROM `users` JOIN `pets` ON (`pets`.`owner_id` = `users`.`id`) WHERE (`users`.`name` = ?)", query)
	assert.Equal(t, []any{"Bob"}, args)
}

func TestTextPatternPredicates(t *testing.T) {
	t.Parallel()
	name := Text("name")
	_, err := NewTable("users").Columns(name).Build()
	require.NoError(t, err)

	q, args := sql.Dialect(dialect.SQLite).
		Select("name").
		From(sql.Table("users")).
		Where(name.Contains("50%")).
		Query()
	assert.Equal(t, "SELECT `name` FROM `users` WHERE (`name` LIKE ?)", q)
	assert.Equal(t, []any{`%50\%%`}, args)
}

func TestAssignments(t *testing.T) {
	t.Parallel()
	name := Text("name")
	age := Int64("age")
	_, err := NewTable("users").Columns(name, age).Build()
	require.NoError(t, err)

	query, args := sql.Dialect(dialect.SQLite).
		Insert("users").
		Assign(name.Set("Bob"), age.Set(42)).
		Query()
	assert.Equal(t, "INSERT INTO `users` (`name`, `age`) VALUES (?, ?)", query)
	assert.Equal(t, []any{"Bob", int64(42)}, args)
}

func TestNewView(t *testing.T) {
	t.Parallel()
	sel := sql.Dialect(dialect.SQLite).
		Select("owner_id").
		SelectExpr(sql.CountAll()).As("n").
		From(sql.Table("pets")).
		GroupBy("owner_id")
	v, err := NewView("pet_counts", sel)
	require.NoError(t, err)
	assert.Equal(t, "pet_counts", v.Name())
}

func TestNewViewRejectsBinds(t *testing.T) {
	t.Parallel()
	sel := sql.Dialect(dialect.SQLite).
		Select("id").
		From(sql.Table("pets")).
		Where(sql.EQ("kind", "dog"))
	_, err := NewView("dogs", sel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind parameters")
}

func TestNewViewRejectsMalformedSelection(t *testing.T) {
	t.Parallel()
	sel := sql.Dialect(dialect.SQLite).Select("id") // no FROM
	_, err := NewView("broken", sel)
	require.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	t.Parallel()
	users, err := NewTable("users").Columns(Int64("id").Primary()).Build()
	require.NoError(t, err)

	s := &Schema{Version: 1, Tables: []*Table{users}}
	require.NoError(t, s.Validate())

	s.Version = 0
	require.Error(t, s.Validate())
}

func TestSchemaValidateDuplicateNames(t *testing.T) {
	t.Parallel()
	a, err := NewTable("users").Columns(Int64("id").Primary()).Build()
	require.NoError(t, err)
	b, err := NewTable("users").Columns(Int64("id").Primary()).Build()
	require.NoError(t, err)

	s := &Schema{Version: 1, Tables: []*Table{a, b}}
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate table "users"`)
}

func TestSchemaValidateForeignTable(t *testing.T) {
	t.Parallel()
	uid := Int64("id").Primary()
	users, err := NewTable("users").Columns(uid).Build()
	require.NoError(t, err)
	pets, err := NewTable("pets").
		Columns(Int64("id").Primary(), Int64("owner_id").References(uid)).
		Build()
	require.NoError(t, err)
	_ = users

	s := &Schema{Version: 1, Tables: []*Table{pets}}
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside this schema")
}
