package relic

import (
	"errors"
	"fmt"

	"github.com/syssam/relic/dialect/sql"
)

var (
	// ErrClosed is returned when a scope is requested on a closed
	// coordinator.
	ErrClosed = errors.New("relic: coordinator is closed")

	// ErrMigrationRequired is returned by Open when the stored schema
	// version is older than the declared one and no migration function
	// was configured.
	ErrMigrationRequired = errors.New("relic: stored schema version requires migration")

	// ErrReadOnly is returned when a write statement or a nested
	// transaction is attempted inside a read scope.
	ErrReadOnly = errors.New("relic: write operation in a read scope")
)

// ConstraintError is returned when the engine rejects a statement with a
// constraint violation. The violated constraint kind is classified from
// the engine error.
type ConstraintError struct {
	Kind  sql.ConstraintKind
	Table string
	err   error
}

func (e *ConstraintError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("relic: %s constraint violation on table %q: %v", e.Kind, e.Table, e.err)
	}
	return fmt.Sprintf("relic: %s constraint violation: %v", e.Kind, e.err)
}

func (e *ConstraintError) Unwrap() error { return e.err }

// IsConstraint reports whether err carries a constraint violation.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// IsUnique reports whether err carries a unique-constraint violation.
func IsUnique(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == sql.ConstraintUnique
}

// ExecError is returned when the engine rejects a statement for a
// reason other than a constraint violation. It carries the compiled SQL
// text and the bind count for diagnostics.
type ExecError struct {
	Query string
	Binds int
	err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("relic: exec %q (%d binds): %v", e.Query, e.Binds, e.err)
}

func (e *ExecError) Unwrap() error { return e.err }

// ConversionError is returned by the typed cursor accessors when a
// stored value cannot be converted to the requested Go type.
type ConversionError struct {
	Column string
	Value  any
	Target string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("relic: column %q: cannot convert %T to %s", e.Column, e.Value, e.Target)
}
