package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/relic/dialect"
	"github.com/syssam/relic/dialect/sql"
)

// DDL generation. The output is deterministic: columns render in
// declaration order and constraints in a fixed clause order, so the
// same schema always produces byte-identical statements.

func columnType(c *column, d string) (string, error) {
	switch d {
	case dialect.SQLite:
		switch c.kind {
		case KindInt64:
			return "INTEGER", nil
		case KindFloat:
			return "REAL", nil
		case KindText, KindUUID:
			return "TEXT", nil
		case KindBlob:
			return "BLOB", nil
		case KindBool:
			return "BOOLEAN", nil
		case KindTime:
			return "TIMESTAMP", nil
		}
	case dialect.MySQL:
		switch c.kind {
		case KindInt64:
			return "BIGINT", nil
		case KindFloat:
			return "DOUBLE", nil
		case KindText:
			if c.size > 0 {
				return fmt.Sprintf("VARCHAR(%d)", c.size), nil
			}
			return "TEXT", nil
		case KindBlob:
			return "BLOB", nil
		case KindBool:
			return "BOOLEAN", nil
		case KindTime:
			return "TIMESTAMP", nil
		case KindUUID:
			return "CHAR(36)", nil
		}
	case dialect.Postgres:
		switch c.kind {
		case KindInt64:
			if c.autoInc {
				return "BIGSERIAL", nil
			}
			return "BIGINT", nil
		case KindFloat:
			return "DOUBLE PRECISION", nil
		case KindText:
			return "TEXT", nil
		case KindBlob:
			return "BYTEA", nil
		case KindBool:
			return "BOOLEAN", nil
		case KindTime:
			return "TIMESTAMPTZ", nil
		case KindUUID:
			return "UUID", nil
		}
	default:
		return "", fmt.Errorf("schema: unsupported dialect %q", d)
	}
	return "", fmt.Errorf("schema: no %s type for kind %s", d, c.kind)
}

func defaultLiteral(c *column) (string, error) {
	switch v := c.defaultVal.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	}
	return "", fmt.Errorf("schema: column %q: unsupported default value %T", c.name, c.defaultVal)
}

// CreateSQL renders the CREATE TABLE statement for the given dialect.
func (t *Table) CreateSQL(d string) (string, error) {
	b := sql.NewBuilder(d)
	b.WriteString("CREATE TABLE ")
	b.Ident(t.name)
	b.WriteString(" (")
	inlinePK := len(t.primary) == 1
	for i, c := range t.columns {
		if i > 0 {
			b.Comma()
		}
		typ, err := columnType(c, d)
		if err != nil {
			return "", err
		}
		b.Ident(c.name)
		b.Pad().WriteString(typ)
		if inlinePK && c == t.primary[0] {
			b.WriteString(" PRIMARY KEY")
			if c.autoInc {
				switch d {
				case dialect.SQLite:
					b.WriteString(" AUTOINCREMENT")
				case dialect.MySQL:
					b.WriteString(" AUTO_INCREMENT")
				}
			}
		}
		if !c.nullable && !(inlinePK && c == t.primary[0]) {
			b.WriteString(" NOT NULL")
		}
		if c.unique {
			b.WriteString(" UNIQUE")
		}
		if c.hasDefault {
			lit, err := defaultLiteral(c)
			if err != nil {
				return "", err
			}
			b.WriteString(" DEFAULT ")
			b.WriteString(lit)
		}
		if c.collation != "" {
			b.WriteString(" COLLATE ")
			b.WriteString(c.collation)
		}
		if c.ref != nil {
			b.WriteString(" REFERENCES ")
			b.Ident(c.ref.target.table.name)
			b.Wrap(func(b *sql.Builder) {
				b.Ident(c.ref.target.name)
			})
			if c.ref.onDelete != "" {
				b.WriteString(" ON DELETE ")
				b.WriteString(string(c.ref.onDelete))
			}
			if c.ref.onUpdate != "" {
				b.WriteString(" ON UPDATE ")
				b.WriteString(string(c.ref.onUpdate))
			}
		}
	}
	if len(t.primary) > 1 {
		b.Comma()
		b.WriteString("PRIMARY KEY ")
		b.Wrap(func(b *sql.Builder) {
			for i, c := range t.primary {
				if i > 0 {
					b.Comma()
				}
				b.Ident(c.name)
			}
		})
	}
	for _, set := range t.uniques {
		b.Comma()
		b.WriteString("UNIQUE ")
		b.Wrap(func(b *sql.Builder) {
			for i, c := range set {
				if i > 0 {
					b.Comma()
				}
				b.Ident(c.name)
			}
		})
	}
	b.WriteString(")")
	stmt, _ := b.Query()
	return stmt, b.Err()
}

// IndexSQL renders the CREATE INDEX statements of the table for the
// given dialect, in declaration order.
func (t *Table) IndexSQL(d string) ([]string, error) {
	stmts := make([]string, 0, len(t.indexes))
	for _, idx := range t.indexes {
		b := sql.NewBuilder(d)
		b.WriteString("CREATE ")
		if idx.unique {
			b.WriteString("UNIQUE ")
		}
		b.WriteString("INDEX ")
		b.Ident(idx.name)
		b.WriteString(" ON ")
		b.Ident(t.name)
		b.Pad().Wrap(func(b *sql.Builder) {
			for i, c := range idx.columns {
				if i > 0 {
					b.Comma()
				}
				b.Ident(c.name)
			}
		})
		stmt, _ := b.Query()
		if err := b.Err(); err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// CreateSQL renders the CREATE VIEW statement for the given dialect.
func (v *View) CreateSQL(d string) (string, error) {
	b := sql.NewBuilder(d)
	b.WriteString("CREATE VIEW ")
	b.Ident(v.name)
	b.WriteString(" AS ")
	body, args := v.selector.QueryDialect(d)
	if len(args) > 0 {
		return "", fmt.Errorf("schema: view %q: selection carries bind parameters", v.name)
	}
	b.WriteString(body)
	stmt, _ := b.Query()
	return stmt, b.Err()
}

// CreateSQL renders the full schema DDL for the given dialect: tables
// first, then their indexes, then views, each in declaration order.
func (s *Schema) CreateSQL(d string) ([]string, error) {
	var stmts []string
	for _, t := range s.Tables {
		stmt, err := t.CreateSQL(d)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	for _, t := range s.Tables {
		idx, err := t.IndexSQL(d)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, idx...)
	}
	for _, v := range s.Views {
		stmt, err := v.CreateSQL(d)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
