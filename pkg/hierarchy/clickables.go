package hierarchy

import "sort"

// ClickableEntry is a clickable node together with its sort key.
type ClickableEntry struct {
	Top        int // top edge of the node's bounds
	StackDepth int // traversal stack size when the node was popped
	Node       *Node
}

// Collect harvests every clickable node, ordered by (Top, StackDepth).
//
// StackDepth is not the tree depth: it is the number of nodes still on the
// LIFO traversal stack when the node is popped, which depends on how many
// siblings of its ancestors are pending. Existing summaries were indexed with
// this tie-break, so it must not be replaced with the real depth.
func Collect(root *Node) []ClickableEntry {
	if root == nil {
		return nil
	}

	var entries []ClickableEntry
	stack := []*Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Clickable {
			entries = append(entries, ClickableEntry{
				Top:        node.Bounds.Top,
				StackDepth: len(stack),
				Node:       node,
			})
		}
		stack = append(stack, node.Children...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Top != entries[j].Top {
			return entries[i].Top < entries[j].Top
		}
		return entries[i].StackDepth < entries[j].StackDepth
	})
	return entries
}
