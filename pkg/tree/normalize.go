package tree

import (
	"slices"
	"sort"
	"strings"
)

// Normalize converts a raw snapshot into a normalized [Tree].
//
// Only selected items are visited. When the snapshot has more than one
// selected top-level item, a synthetic root with id [SyntheticRootID] is
// inserted above them so the tree has a single entry point. A nil or empty
// snapshot yields an empty tree.
//
// Normalize is a pure function of its input: repeated calls with the same
// snapshot produce identical trees. It never fails; cyclic item references
// are broken by dropping the revisiting edge, and duplicate ids keep their
// first occurrence.
func Normalize(items []*Item) *Tree {
	t := newTree()

	selected := 0
	for _, it := range items {
		if it != nil && it.Selected {
			selected++
		}
	}
	if selected == 0 {
		return t
	}

	onPath := make(map[*Item]bool)
	seen := make(map[string]bool)

	if selected == 1 {
		for _, it := range items {
			if b := buildItem(it, "", 0, onPath, seen); b != nil {
				t.addBuilt(b)
			}
		}
		return t
	}

	// Multiple top-level items share a synthetic root.
	root := &built{node: &Node{ID: SyntheticRootID, Name: "/", Depth: 0}}
	seen[SyntheticRootID] = true
	var sum float64
	for _, it := range items {
		if b := buildItem(it, SyntheticRootID, 1, onPath, seen); b != nil {
			root.children = append(root.children, b)
			sum += b.node.Size
		}
	}
	root.node.Size = sum
	root.finish()
	t.addBuilt(root)
	return t
}

// NormalizeFlat converts a flat snapshot (entries linked by parent id) into a
// normalized [Tree]. It applies the same rules as [Normalize], plus:
//
//   - an entry whose parent is missing or unselected becomes an orphan root
//   - entries trapped in a parent-reference cycle are recovered by promoting
//     the smallest id in the cycle to a root and dropping its parent edge
func NormalizeFlat(entries []Entry) *Tree {
	type slot struct {
		item  *Item
		entry Entry
	}
	byID := make(map[string]*slot, len(entries))
	var ids []string

	for _, e := range entries {
		if !e.Selected {
			continue
		}
		id := e.ID
		if id == "" {
			id = DeriveID(e.ParentID, e.Name)
		}
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = &slot{
			item:  &Item{ID: id, Name: e.Name, Size: e.Size, Selected: true},
			entry: e,
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var tops []*Item
	attached := make(map[string]bool, len(byID))
	for _, id := range ids {
		s := byID[id]
		parent, ok := byID[s.entry.ParentID]
		if s.entry.ParentID == "" || !ok {
			// Root, or dangling parent reference: orphan root.
			tops = append(tops, s.item)
			continue
		}
		parent.item.Children = append(parent.item.Children, s.item)
		attached[id] = true
	}

	// Entries unreachable from any root are parent-cycle islands. Promote the
	// smallest unreached id to a root; Normalize drops the closing back-edge.
	reached := make(map[string]bool, len(byID))
	var mark func(it *Item)
	mark = func(it *Item) {
		if reached[it.ID] {
			return
		}
		reached[it.ID] = true
		for _, c := range it.Children {
			mark(c)
		}
	}
	for _, it := range tops {
		mark(it)
	}
	for _, id := range ids {
		if reached[id] {
			continue
		}
		if attached[id] {
			s := byID[id]
			parent := byID[s.entry.ParentID]
			parent.item.Children = slices.DeleteFunc(parent.item.Children,
				func(c *Item) bool { return c.ID == id })
		}
		tops = append(tops, byID[id].item)
		mark(byID[id].item)
	}

	return Normalize(tops)
}

// built is an intermediate node whose children are known but not yet ordered
// or inserted. Insertion happens parent-first once subtree sizes are final.
type built struct {
	node     *Node
	children []*built
}

// finish orders the children (descending size, name tie-break) and records
// their ids on the node.
func (b *built) finish() {
	sort.SliceStable(b.children, func(i, j int) bool {
		a, c := b.children[i].node, b.children[j].node
		if a.Size != c.Size {
			return a.Size > c.Size
		}
		if a.Name != c.Name {
			return strings.Compare(a.Name, c.Name) < 0
		}
		return a.ID < c.ID
	})
	b.node.Children = make([]string, len(b.children))
	for i, c := range b.children {
		b.node.Children[i] = c.node.ID
	}
}

func buildItem(it *Item, parentID string, depth int, onPath map[*Item]bool, seen map[string]bool) *built {
	if it == nil || !it.Selected {
		return nil
	}
	if onPath[it] {
		// Ancestor chain revisits this item: drop the back-edge.
		return nil
	}

	id := it.ID
	if id == "" {
		id = DeriveID(parentID, it.Name)
	}
	if seen[id] {
		return nil
	}
	seen[id] = true

	onPath[it] = true
	defer delete(onPath, it)

	b := &built{node: &Node{
		ID:       id,
		Name:     it.Name,
		Size:     it.Size,
		Depth:    depth,
		ParentID: parentID,
	}}

	var sum float64
	for _, c := range it.Children {
		if cb := buildItem(c, id, depth+1, onPath, seen); cb != nil {
			b.children = append(b.children, cb)
			sum += cb.node.Size
		}
	}
	if sum > b.node.Size {
		b.node.Size = sum
	}
	b.finish()
	return b
}

func (t *Tree) addBuilt(b *built) {
	t.add(b.node)
	for _, c := range b.children {
		t.addBuilt(c)
	}
}
