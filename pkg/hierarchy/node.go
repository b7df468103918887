// Package hierarchy models uiautomator window dumps: the element tree, selector
// resolution and the clickable-element summaries written by the capture tool.
package hierarchy

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/rocketplan/uiflow/pkg/core"
)

// Node is one UI element of a hierarchy snapshot. Attributes missing from the
// markup are left empty or false.
type Node struct {
	Name          string // element tag: hierarchy, node, or a class name in compressed dumps
	Text          string
	Description   string // content-desc
	Identifier    string // resource-id
	Class         string
	RawBounds     string // bounds attribute as written in the dump
	Bounds        core.Rect
	Clickable     bool
	LongClickable bool
	Children      []*Node
}

// Parse builds the element tree from uiautomator dump markup. The document
// element becomes the root Node.
func Parse(markup string) (*Node, error) {
	decoder := xml.NewDecoder(strings.NewReader(markup))

	var (
		root  *Node
		stack []*Node
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.ErrMalformedSnapshot.WithCause(err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := newNode(t)
			if len(stack) == 0 {
				if root != nil {
					return nil, core.ErrMalformedSnapshot.WithCause(errors.New("junk after document element"))
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, core.ErrMalformedSnapshot.WithCause(errors.New("text outside document element"))
			}
		}
	}

	if root == nil {
		return nil, core.ErrMalformedSnapshot.WithCause(errors.New("no element found"))
	}
	return root, nil
}

func newNode(t xml.StartElement) *Node {
	node := &Node{Name: t.Name.Local}
	for _, attr := range t.Attr {
		switch attr.Name.Local {
		case "text":
			node.Text = attr.Value
		case "content-desc":
			node.Description = attr.Value
		case "resource-id":
			node.Identifier = attr.Value
		case "class":
			node.Class = attr.Value
		case "bounds":
			node.RawBounds = attr.Value
			node.Bounds = core.ParseRect(attr.Value)
		case "clickable":
			node.Clickable = attr.Value == "true"
		case "long-clickable":
			node.LongClickable = attr.Value == "true"
		}
	}
	return node
}

// Walk visits n and its descendants in document order (pre-order, children
// left to right) until fn returns false. It reports whether the walk ran to
// the end.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Center returns the center of the node's bounds and whether the bounds
// attribute was well formed.
func (n *Node) Center() (int, int, bool) {
	r, ok := core.ParseRectOK(n.RawBounds)
	x, y := r.Center()
	return x, y, ok
}
