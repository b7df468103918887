package hierarchy

import (
	"strings"

	"github.com/rocketplan/uiflow/pkg/flow"
)

// Find returns the first node in document order matching every predicate
// of sel, or nil.
func Find(root *Node, sel flow.Selector) *Node {
	var found *Node
	root.Walk(func(n *Node) bool {
		if Matches(n, sel) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Matches reports whether n satisfies sel.
func Matches(n *Node, sel flow.Selector) bool {
	if sel.IDContains != "" && !strings.Contains(n.Identifier, sel.IDContains) {
		return false
	}
	if sel.Text != nil && *sel.Text != n.Text {
		return false
	}
	if sel.Desc != nil && *sel.Desc != n.Description {
		return false
	}
	return true
}
