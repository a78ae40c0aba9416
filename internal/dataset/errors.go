package dataset

import (
	"fmt"
	"strings"
)

// MissingDataError is returned when one or more required source files are
// absent or unreadable.
type MissingDataError struct {
	Files []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing required data files: %s", strings.Join(e.Files, ", "))
}

// SchemaError is returned when a table lacks columns an operation needs.
type SchemaError struct {
	Table   Table
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
}
