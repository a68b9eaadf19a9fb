// Package view derives the visible subset of a normalized tree from the
// user's expansion state.
//
// Visibility is a pure function of (tree, expansion): a node is visible iff
// it is a root, or its parent is visible and the parent is expanded. The
// resolver never touches simulation state; reconciling positions against a
// changed visible set is the engine's job.
//
// [Expansion] is a flat membership set, which is what makes collapse
// memory-free: collapsing a node hides its subtree but leaves descendants'
// own expansion bits intact, so re-expanding restores the prior detail.
package view

import (
	"sort"

	"github.com/davemaier/orbitmap/pkg/tree"
)

// Expansion is the set of node ids whose children are currently shown.
// The zero value is not usable; use [NewExpansion].
// Expansion is not safe for concurrent mutation.
type Expansion struct {
	expanded map[string]bool
}

// NewExpansion creates an expansion set with the given ids pre-expanded.
func NewExpansion(ids ...string) *Expansion {
	e := &Expansion{expanded: make(map[string]bool, len(ids))}
	for _, id := range ids {
		e.expanded[id] = true
	}
	return e
}

// Expand marks the node's children as shown.
func (e *Expansion) Expand(id string) { e.expanded[id] = true }

// Collapse hides the node's children. Descendants keep their own expansion
// state for later re-expansion.
func (e *Expansion) Collapse(id string) { delete(e.expanded, id) }

// Toggle flips the node's expansion and reports the new state.
func (e *Expansion) Toggle(id string) bool {
	if e.expanded[id] {
		delete(e.expanded, id)
		return false
	}
	e.expanded[id] = true
	return true
}

// IsExpanded reports whether the node's children are shown.
func (e *Expansion) IsExpanded(id string) bool { return e.expanded[id] }

// IDs returns the expanded ids in sorted order.
func (e *Expansion) IDs() []string {
	ids := make([]string, 0, len(e.expanded))
	for id := range e.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the expansion set.
func (e *Expansion) Clone() *Expansion {
	c := &Expansion{expanded: make(map[string]bool, len(e.expanded))}
	for id := range e.expanded {
		c.expanded[id] = true
	}
	return c
}

// Edge is a visible parent→child link.
type Edge struct {
	ParentID string
	ChildID  string
}

// Resolve computes the visible nodes and edges for the given tree and
// expansion state. Roots are always visible; a non-root node is visible iff
// its parent is visible and expanded. The result order is deterministic
// (depth-first, following each node's normalized child order).
func Resolve(t *tree.Tree, e *Expansion) ([]*tree.Node, []Edge) {
	if t == nil || t.Len() == 0 {
		return nil, nil
	}

	var nodes []*tree.Node
	var edges []Edge

	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		nodes = append(nodes, n)
		if !e.IsExpanded(n.ID) {
			return
		}
		for _, c := range t.Children(n.ID) {
			edges = append(edges, Edge{ParentID: n.ID, ChildID: c.ID})
			walk(c)
		}
	}

	for _, rootID := range t.Roots() {
		if r, ok := t.Node(rootID); ok {
			walk(r)
		}
	}
	return nodes, edges
}

// VisibleIDs returns just the visible node ids, in resolve order.
func VisibleIDs(t *tree.Tree, e *Expansion) []string {
	nodes, _ := Resolve(t, e)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// VisibleChildCount returns how many of the node's children are visible:
// all of them when the node is expanded, zero otherwise.
func VisibleChildCount(t *tree.Tree, e *Expansion, id string) int {
	if !e.IsExpanded(id) {
		return 0
	}
	n, ok := t.Node(id)
	if !ok {
		return 0
	}
	return len(n.Children)
}
