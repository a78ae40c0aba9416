package entities

import "fmt"

// InvalidFilterError reports a filter value that is not in the matching
// entity list.
type InvalidFilterError struct {
	Field string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s: %q is not a known value", e.Field, e.Value)
}
