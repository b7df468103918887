package flow

import (
	"fmt"
	"strings"
)

// Selector identifies an element in the UI hierarchy.
// Text and Desc are exact matches when set (an explicit empty string only
// matches empty attributes); IDContains is a resource-id substring match
// when non-empty. All set fields must match.
type Selector struct {
	Text       *string
	Desc       *string
	IDContains string
}

// IsEmpty reports whether no predicate is set. An empty selector matches
// the first node of any tree.
func (s Selector) IsEmpty() bool {
	return s.Text == nil && s.Desc == nil && s.IDContains == ""
}

// String describes the selector for log messages.
func (s Selector) String() string {
	var parts []string
	if s.Text != nil {
		parts = append(parts, fmt.Sprintf("text=%q", *s.Text))
	}
	if s.Desc != nil {
		parts = append(parts, fmt.Sprintf("desc=%q", *s.Desc))
	}
	if s.IDContains != "" {
		parts = append(parts, fmt.Sprintf("id~=%q", s.IDContains))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Str returns a pointer to v, for building selectors in code.
func Str(v string) *string {
	return &v
}
