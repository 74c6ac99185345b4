package taggraph

import (
	"fmt"
	"strings"
)

// CycleError reports an alias chain that never reaches a terminal tag.
type CycleError struct {
	Path []string
}

// Error returns the error string.
func (e *CycleError) Error() string {
	return fmt.Sprintf("alias cycle: %s", strings.Join(e.Path, " -> "))
}

// ConflictError reports one antecedent aliased to two different tags.
type ConflictError struct {
	Tag    string
	First  string
	Second string
}

// Error returns the error string.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("alias %q has conflicting consequents %q and %q", e.Tag, e.First, e.Second)
}
