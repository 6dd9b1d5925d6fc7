package sql

import (
	"errors"
	"strings"
)

// ConstraintKind classifies a constraint violation reported by the
// engine.
type ConstraintKind int

// Constraint violation kinds.
const (
	ConstraintUnique ConstraintKind = iota + 1
	ConstraintForeignKey
	ConstraintCheck
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign-key"
	case ConstraintCheck:
		return "check"
	}
	return "unknown"
}

// errorCoder is implemented by driver errors carrying a string code
// (lib/pq, pgx).
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by driver errors carrying a numeric code
// (go-sql-driver/mysql).
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by driver errors carrying a SQLSTATE.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for constraint violations (class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451
	mysqlForeignKeyChild        = 1452
	mysqlCheckConstraintViolate = 3819
)

type violationRule struct {
	kind      ConstraintKind
	sqlStates []string
	numbers   []uint16
	fragments []string
}

var violationRules = []violationRule{
	{
		kind:      ConstraintUnique,
		sqlStates: []string{pgUniqueViolation},
		numbers:   []uint16{mysqlDuplicateEntry},
		fragments: []string{
			"UNIQUE constraint failed",   // SQLite
			"violates unique constraint", // Postgres string fallback
			"Error 1062",                 // MySQL string fallback
		},
	},
	{
		kind:      ConstraintForeignKey,
		sqlStates: []string{pgForeignKeyViolation},
		numbers:   []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		fragments: []string{
			"FOREIGN KEY constraint failed",
			"violates foreign key constraint",
			"Error 1451",
			"Error 1452",
		},
	},
	{
		kind:      ConstraintCheck,
		sqlStates: []string{pgCheckViolation},
		numbers:   []uint16{mysqlCheckConstraintViolate},
		fragments: []string{
			"CHECK constraint failed",
			"violates check constraint",
			"Error 3819",
		},
	},
}

// ConstraintViolation reports whether err is a constraint violation
// reported by one of the supported engines, and if so, of which kind.
func ConstraintViolation(err error) (ConstraintKind, bool) {
	if err == nil {
		return 0, false
	}
	var state string
	if e, ok := asError[sqlStateError](err); ok {
		state = e.SQLState()
	} else if e, ok := asError[errorCoder](err); ok {
		state = e.Code()
	}
	var number uint16
	if e, ok := asError[errorNumberer](err); ok {
		number = e.Number()
	}
	msg := err.Error()
	for _, rule := range violationRules {
		if state != "" && contains(rule.sqlStates, state) {
			return rule.kind, true
		}
		for _, n := range rule.numbers {
			if number != 0 && number == n {
				return rule.kind, true
			}
		}
		for _, frag := range rule.fragments {
			if strings.Contains(msg, frag) {
				return rule.kind, true
			}
		}
	}
	return 0, false
}

// IsUniqueConstraintError reports whether err resulted from a
// uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	k, ok := ConstraintViolation(err)
	return ok && k == ConstraintUnique
}

// IsForeignKeyConstraintError reports whether err resulted from a
// foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	k, ok := ConstraintViolation(err)
	return ok && k == ConstraintForeignKey
}

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	k, ok := ConstraintViolation(err)
	return ok && k == ConstraintCheck
}

// asError extracts an error implementing T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
