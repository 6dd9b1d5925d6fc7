package schema

import (
	"fmt"
	"strings"
)

// ValidationError describes one finding of a schema diff validation.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates a change that can break existing readers.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the findings of a schema diff validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports whether any validation errors were found.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether any validation warnings were found.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges reports whether any finding is a breaking change.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema diff validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn downgrades dropped columns from errors to warnings.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable downgrades dropped tables from errors to warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex downgrades dropped indexes from errors to warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull downgrades NULL-to-NOT NULL changes from errors to
// warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateDiff validates the difference between the current and desired
// table sets before a migration runs. Breaking changes (dropped tables
// or columns, tightened nullability) surface as errors unless an option
// allows them.
//
// Example:
//
//	result := schema.ValidateDiff(current.Tables, desired.Tables)
//	if result.HasBreakingChanges() {
//	    log.Fatal("breaking changes detected:", result)
//	}
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	result := &ValidationResult{}
	currentMap := make(map[string]*Table, len(current))
	for _, t := range current {
		currentMap[t.name] = t
	}
	desiredMap := make(map[string]*Table, len(desired))
	for _, t := range desired {
		desiredMap[t.name] = t
	}

	for _, t := range current {
		if _, ok := desiredMap[t.name]; !ok {
			err := &ValidationError{
				Table:    t.name,
				Message:  "table will be dropped",
				Breaking: true,
			}
			if cfg.allowDropTable {
				result.Warnings = append(result.Warnings, err)
			} else {
				result.Errors = append(result.Errors, err)
			}
		}
	}

	for _, desired := range desired {
		current, exists := currentMap[desired.name]
		if !exists {
			// New table, nothing to compare against.
			continue
		}
		validateTableDiff(current, desired, cfg, result)
	}

	return result
}

func validateTableDiff(current, desired *Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.columns {
		if _, ok := desired.byName[c.name]; !ok {
			err := &ValidationError{
				Table:    current.name,
				Column:   c.name,
				Message:  "column will be dropped",
				Breaking: true,
			}
			if cfg.allowDropColumn {
				result.Warnings = append(result.Warnings, err)
			} else {
				result.Errors = append(result.Errors, err)
			}
		}
	}

	for _, desiredCol := range desired.columns {
		currentCol, exists := current.byName[desiredCol.name]
		if !exists {
			if !desiredCol.nullable && !desiredCol.hasDefault {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.name,
					Column:  desiredCol.name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}

		if currentCol.kind != desiredCol.kind {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.name,
				Column:  desiredCol.name,
				Message: fmt.Sprintf("column kind changing from %s to %s", currentCol.kind, desiredCol.kind),
			})
		}

		if currentCol.nullable && !desiredCol.nullable {
			err := &ValidationError{
				Table:    current.name,
				Column:   desiredCol.name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			}
			if cfg.allowNullToNotNull {
				result.Warnings = append(result.Warnings, err)
			} else {
				result.Errors = append(result.Errors, err)
			}
		}

		if currentCol.size > 0 && desiredCol.size > 0 && desiredCol.size < currentCol.size {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.name,
				Column:  desiredCol.name,
				Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", currentCol.size, desiredCol.size),
			})
		}

		if !currentCol.unique && desiredCol.unique {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.name,
				Column:  desiredCol.name,
				Message: "adding UNIQUE constraint may fail if duplicate values exist",
			})
		}
	}

	desiredIdxs := make(map[string]bool, len(desired.indexes))
	for _, idx := range desired.indexes {
		desiredIdxs[idx.name] = true
	}
	for _, idx := range current.indexes {
		if !desiredIdxs[idx.name] {
			err := &ValidationError{
				Table:   current.name,
				Message: fmt.Sprintf("index %q will be dropped", idx.name),
			}
			if cfg.allowDropIndex {
				result.Warnings = append(result.Warnings, err)
			} else {
				result.Errors = append(result.Errors, err)
			}
		}
	}
}

// ValidateTable reports advisory findings on a single built table.
// Structural malformations are rejected earlier, at Build time.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	if len(t.primary) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.name,
			Message: "table has no primary key",
		})
	}
	return result
}
