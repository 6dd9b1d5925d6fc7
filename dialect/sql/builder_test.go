package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relic/dialect"
)

func TestSelect(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Select("id", "name").
		From(Table("users")).
		Where(EQ("name", "Bob")).
		Query()
	assert.Equal(t, "SELECT `id`, `name` FROM `users` WHERE (`name` = ?)", query)
	assert.Equal(t, []any{"Bob"}, args)
}

func TestSelectPostgresPlaceholders(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.Postgres).
		Select("id").
		From(Table("users")).
		Where(And(GT("age", 21), LT("age", 65))).
		Query()
	assert.Equal(t, `SELECT "id" FROM "users" WHERE (("age" > $1) AND ("age" < $2))`, query)
	assert.Equal(t, []any{21, 65}, args)
}

func TestSelectDeterministic(t *testing.T) {
	t.Parallel()
	s := Dialect(dialect.SQLite).
		Select("id").
		From(Table("events")).
		Where(In("kind", "a", "b")).
		OrderBy(Desc("at")).
		Limit(10)
	q1, a1 := s.Query()
	q2, a2 := s.Query()
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
}

func TestSelectClauseOrder(t *testing.T) {
	t.Parallel()
	// Clauses accumulate in any call order and compile in grammar order.
	s := Dialect(dialect.SQLite).Select()
	s.Limit(5)
	s.OrderBy(Asc("name"))
	s.Where(NotNull("name"))
	s.From(Table("users"))
	query, _ := s.Query()
	assert.Equal(t, "SELECT * FROM `users` WHERE (`name` IS NOT NULL) ORDER BY name ASC LIMIT 5", query)
}

func TestSelectJoinQualifies(t *testing.T) {
	t.Parallel()
	users, pets := Table("users"), Table("pets")
	query, _ := Dialect(dialect.SQLite).
		Select(users.C("name")).
		From(users).
		Join(pets).
		On(pets.C("owner_id"), users.C("id")).
		Query()
	assert.Equal(t, "SELECT `users`.`name` FROM `users` JOIN `pets` ON `pets`.`owner_id` = `users`.`id`", query)
}

func TestSelectLeftJoinAlias(t *testing.T) {
	t.Parallel()
	u := Table("users").As("u")
	p := Table("pets").As("p")
	query, _ := Dialect(dialect.Postgres).
		Select(u.C("name"), p.C("name")).
		From(u).
		LeftJoin(p).
		On(p.C("owner_id"), u.C("id")).
		Query()
	assert.Equal(t, `SELECT "u"."name", "p"."name" FROM "users" AS "u" LEFT JOIN "pets" AS "p" ON "p"."owner_id" = "u"."id"`, query)
}

func TestSelectJoinWithoutOn(t *testing.T) {
	t.Parallel()
	s := Dialect(dialect.SQLite).
		Select("id").
		From(Table("users")).
		Join(Table("pets"))
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "join without an ON clause")
}

func TestSelectCrossJoinRejectsOn(t *testing.T) {
	t.Parallel()
	s := Dialect(dialect.SQLite).
		Select("id").
		From(Table("a")).
		CrossJoin(Table("b")).
		On("a.id", "b.id")
	require.Error(t, s.Err())
}

func TestSelectGroupHaving(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Select("owner_id").
		SelectExpr(CountAll()).As("n").
		From(Table("pets")).
		GroupBy("owner_id").
		Having(CountAll().GT(Value[int64](2))).
		Query()
	assert.Equal(t, "SELECT `owner_id`, COUNT(*) AS `n` FROM `pets` GROUP BY `owner_id` HAVING (COUNT(*) > ?)", query)
	assert.Equal(t, []any{int64(2)}, args)
}

func TestSelectWithoutFrom(t *testing.T) {
	t.Parallel()
	s := Dialect(dialect.SQLite).Select("id")
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "without a FROM table")
}

func TestSelectInvalidColumn(t *testing.T) {
	t.Parallel()
	s := Dialect(dialect.SQLite).
		Select("id").
		From(Table("users")).
		Where(EQ("name; DROP TABLE users", "x"))
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "invalid column")
}

func TestInsert(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Insert("users").
		Columns("name", "age").
		Values("Bob", 42).
		Query()
	assert.Equal(t, "INSERT INTO `users` (`name`, `age`) VALUES (?, ?)", query)
	assert.Equal(t, []any{"Bob", 42}, args)
}

func TestInsertMultiRow(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.Postgres).
		Insert("users").
		Columns("name").
		Values("a").
		Values("b").
		Query()
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1), ($2)`, query)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestInsertRowArity(t *testing.T) {
	t.Parallel()
	i := Dialect(dialect.SQLite).
		Insert("users").
		Columns("name", "age").
		Values("Bob")
	require.Error(t, i.Err())
	assert.Contains(t, i.Err().Error(), "1 values for 2 columns")
}

func TestInsertDefaultValues(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).Insert("logs").Default().Query()
	assert.Equal(t, "INSERT INTO `logs` DEFAULT VALUES", query)
	assert.Empty(t, args)
}

func TestInsertConflictPolicies(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		dialect string
		policy  ConflictPolicy
		want    string
		wantErr string
	}{
		{name: "sqlite default", dialect: dialect.SQLite, want: "INSERT INTO `users` (`name`) VALUES (?)"},
		{name: "sqlite abort", dialect: dialect.SQLite, policy: ConflictAbort, want: "INSERT INTO `users` (`name`) VALUES (?)"},
		{name: "sqlite ignore", dialect: dialect.SQLite, policy: ConflictIgnore, want: "INSERT OR IGNORE INTO `users` (`name`) VALUES (?)"},
		{name: "sqlite replace", dialect: dialect.SQLite, policy: ConflictReplace, want: "INSERT OR REPLACE INTO `users` (`name`) VALUES (?)"},
		{name: "sqlite rollback", dialect: dialect.SQLite, policy: ConflictRollback, want: "INSERT OR ROLLBACK INTO `users` (`name`) VALUES (?)"},
		{name: "mysql ignore", dialect: dialect.MySQL, policy: ConflictIgnore, want: "INSERT IGNORE INTO `users` (`name`) VALUES (?)"},
		{name: "mysql replace", dialect: dialect.MySQL, policy: ConflictReplace, want: "REPLACE INTO `users` (`name`) VALUES (?)"},
		{name: "mysql fail", dialect: dialect.MySQL, policy: ConflictFail, wantErr: "not supported on mysql"},
		{name: "postgres ignore", dialect: dialect.Postgres, policy: ConflictIgnore, want: `INSERT INTO "users" ("name") VALUES ($1) ON CONFLICT DO NOTHING`},
		{name: "postgres replace", dialect: dialect.Postgres, policy: ConflictReplace, wantErr: "not supported on postgres"},
		{name: "unknown policy", dialect: dialect.SQLite, policy: ConflictPolicy("UPSERT"), wantErr: "invalid conflict policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i := Dialect(tt.dialect).
				Insert("users").
				Columns("name").
				Values("Bob").
				OnConflict(tt.policy)
			if tt.wantErr != "" {
				require.Error(t, i.Err())
				assert.Contains(t, i.Err().Error(), tt.wantErr)
				return
			}
			require.NoError(t, i.Err())
			query, _ := i.Query()
			assert.Equal(t, tt.want, query)
		})
	}
}

func TestInsertReturning(t *testing.T) {
	t.Parallel()
	query, _ := Dialect(dialect.Postgres).
		Insert("users").
		Columns("name").
		Values("Bob").
		Returning("id").
		Query()
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`, query)

	i := Dialect(dialect.MySQL).
		Insert("users").
		Columns("name").
		Values("Bob").
		Returning("id")
	require.Error(t, i.Err())
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Update("users").
		Set("name", "Alice").
		Where(EQ("id", 1)).
		Query()
	assert.Equal(t, "UPDATE `users` SET `name` = ? WHERE (`id` = ?)", query)
	assert.Equal(t, []any{"Alice", 1}, args)
}

func TestUpdateExpr(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Update("accounts").
		SetExpr("balance", Add(C[int64]("balance"), Value[int64](10))).
		Where(EQ("id", 7)).
		Query()
	assert.Equal(t, "UPDATE `accounts` SET `balance` = (`balance` + ?) WHERE (`id` = ?)", query)
	assert.Equal(t, []any{int64(10), 7}, args)
}

func TestUpdateWithoutSets(t *testing.T) {
	t.Parallel()
	u := Dialect(dialect.SQLite).Update("users").Where(EQ("id", 1))
	require.Error(t, u.Err())
	assert.Contains(t, u.Err().Error(), "update without assignments")
}

func TestDeleteRequiresPredicate(t *testing.T) {
	t.Parallel()
	d := Dialect(dialect.SQLite).Delete("users")
	require.Error(t, d.Err())
	assert.Contains(t, d.Err().Error(), "requires a predicate")
}

func TestDeleteAllRows(t *testing.T) {
	t.Parallel()
	d := Dialect(dialect.SQLite).Delete("users").AllRows()
	require.NoError(t, d.Err())
	query, args := d.Query()
	assert.Equal(t, "DELETE FROM `users`", query)
	assert.Empty(t, args)
}

func TestDeleteWithPredicate(t *testing.T) {
	t.Parallel()
	query, args := Dialect(dialect.SQLite).
		Delete("users").
		Where(EQ("id", 3)).
		Query()
	assert.Equal(t, "DELETE FROM `users` WHERE (`id` = ?)", query)
	assert.Equal(t, []any{3}, args)
}

func TestDeleteMixesAllRowsAndPredicate(t *testing.T) {
	t.Parallel()
	d := Dialect(dialect.SQLite).Delete("users").AllRows().Where(True())
	require.Error(t, d.Err())
	assert.Contains(t, d.Err().Error(), "mixes AllRows")
}

func TestPredicateHelpers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    P
		want string
		args []any
	}{
		{name: "in empty", p: In("id"), want: "FALSE"},
		{name: "not in empty", p: NotIn("id"), want: "TRUE"},
		{name: "in", p: In("id", 1, 2), want: "(`id` IN (?, ?))", args: []any{1, 2}},
		{name: "not", p: Not(EQ("id", 1)), want: "NOT ((`id` = ?))", args: []any{1}},
		{name: "or", p: Or(EQ("a", 1), EQ("b", 2)), want: "((`a` = ?) OR (`b` = ?))", args: []any{1, 2}},
		{name: "single and unwrapped", p: And(EQ("a", 1)), want: "(`a` = ?)", args: []any{1}},
		{name: "is null", p: IsNull("deleted_at"), want: "(`deleted_at` IS NULL)"},
		{name: "contains escapes", p: Contains("name", "50%"), want: "(`name` LIKE ?)", args: []any{`%50\%%`}},
		{name: "has prefix", p: HasPrefix("name", "bo"), want: "(`name` LIKE ?)", args: []any{"bo%"}},
		{name: "true", p: True(), want: "TRUE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder(dialect.SQLite)
			tt.p.emit(b)
			require.NoError(t, b.Err())
			query, args := b.Query()
			assert.Equal(t, tt.want, query)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestEmptyConnective(t *testing.T) {
	t.Parallel()
	b := NewBuilder(dialect.SQLite)
	And().emit(b)
	require.Error(t, b.Err())
}

func TestBuilderIdent(t *testing.T) {
	t.Parallel()
	b := NewBuilder(dialect.Postgres)
	b.Ident("users.name")
	assert.Equal(t, `"users"."name"`, b.String())

	b = NewBuilder(dialect.SQLite)
	b.Ident("*")
	assert.Equal(t, "*", b.String())
}

func TestSelectorTables(t *testing.T) {
	t.Parallel()
	single := Dialect(dialect.SQLite).Select("name").From(Table("users"))
	assert.Equal(t, []string{"users"}, single.Tables())

	sub := Dialect(dialect.SQLite).Select("user_id").From(Table("visits"))
	s := Dialect(dialect.SQLite).
		Select("users.name").
		From(Table("users")).
		Join(Table("pets")).
		On("users.id", "pets.owner_id").
		Where(C[int64]("id", "users").InSelect(sub))
	assert.Equal(t, []string{"users", "pets", "visits"}, s.Tables())
}
