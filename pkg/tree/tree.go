package tree

import (
	"crypto/sha256"
	"encoding/hex"
)

// SyntheticRootID is the node id used for the synthetic root inserted when a
// snapshot has zero or multiple selected top-level items.
const SyntheticRootID = "__root__"

// Item is one entry of a raw nested hierarchy snapshot.
// The zero value is a valid (unselected, empty) item.
type Item struct {
	ID       string  // External identity; derived from (parent, name) when empty
	Name     string  // Display name
	Size     float64 // Reported size; rolled up from children when smaller
	Selected bool    // Unselected items and their subtrees are pruned
	Children []*Item
}

// Entry is one record of a flat hierarchy snapshot, linking to its parent by
// id instead of nesting. Used by [NormalizeFlat].
type Entry struct {
	ID       string
	Name     string
	Size     float64
	Selected bool
	ParentID string // Empty for roots; dangling references become orphan roots
}

// Node is one folder projected into layout space. Nodes are immutable once
// produced by normalization; simulation state lives in pkg/physics.
type Node struct {
	ID       string
	Name     string
	Size     float64  // Rolled up: max(reported, sum of visited children)
	Depth    int      // 0 = root
	ParentID string   // Empty iff Depth == 0
	Children []string // Ordered by descending size, name tie-break
}

// IsLeaf reports whether the node has no visited children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsRoot reports whether the node is a component root.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// Tree is a normalized hierarchy: a flat node set with id lookup and ordered
// roots. The zero value is not usable; trees are produced by [Normalize] or
// [NormalizeFlat].
type Tree struct {
	nodes map[string]*Node
	roots []string
	order []string // depth-first insertion order
}

func newTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Node returns the node with the given id and true, or nil and false.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Roots returns the ids of all component roots in deterministic order.
func (t *Tree) Roots() []string { return t.roots }

// Root returns the primary root id, or the empty string for an empty tree.
func (t *Tree) Root() string {
	if len(t.roots) == 0 {
		return ""
	}
	return t.roots[0]
}

// IDs returns all node ids in depth-first normalization order.
func (t *Tree) IDs() []string { return t.order }

// Nodes returns all nodes in depth-first normalization order.
func (t *Tree) Nodes() []*Node {
	nodes := make([]*Node, len(t.order))
	for i, id := range t.order {
		nodes[i] = t.nodes[id]
	}
	return nodes
}

// Children returns the ordered child nodes of the given id.
// Returns nil for leaves and unknown ids.
func (t *Tree) Children(id string) []*Node {
	n, ok := t.nodes[id]
	if !ok || len(n.Children) == 0 {
		return nil
	}
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c, ok := t.nodes[cid]; ok {
			children = append(children, c)
		}
	}
	return children
}

// Parent returns the parent node of the given id, or nil for roots and
// unknown ids.
func (t *Tree) Parent(id string) *Node {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return nil
	}
	return t.nodes[n.ParentID]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) add(n *Node) {
	t.nodes[n.ID] = n
	t.order = append(t.order, n.ID)
	if n.ParentID == "" {
		t.roots = append(t.roots, n.ID)
	}
}

// DeriveID computes the fallback identity for an item without an explicit id:
// a truncated SHA-256 of the parent identity and name. The result is stable
// across re-normalization for the same logical entry and never random.
func DeriveID(parentID, name string) string {
	sum := sha256.Sum256([]byte(parentID + "\x00" + name))
	return hex.EncodeToString(sum[:8])
}
