// Package snapshot defines the wire formats for map input and layout
// output.
//
// A [Snapshot] is what hosts send in: a folder hierarchy, either nested
// ([Item]) or flat ([Entry] rows linked by parent id). A [Frame] is what
// comes back out: settled positions, radii, and connector endpoints, ready
// to draw or store.
//
// The formats are JSON-first and human-readable, with bson tags so frames
// and snapshots round-trip through the document store unchanged.
package snapshot

import (
	"github.com/davemaier/orbitmap/pkg/errors"
	"github.com/davemaier/orbitmap/pkg/tree"
)

// =============================================================================
// Snapshot - Hierarchy Input
// =============================================================================

// Snapshot is the canonical input format for a folder map. Exactly one of
// Items (nested) or Entries (flat) should be populated; when both are
// present the nested form wins.
type Snapshot struct {
	Name    string  `json:"name,omitempty" bson:"name,omitempty"`
	Items   []Item  `json:"items,omitempty" bson:"items,omitempty"`
	Entries []Entry `json:"entries,omitempty" bson:"entries,omitempty"`
}

// Item is one node of a nested hierarchy. ID is optional; stable ids are
// derived from the parent chain when absent.
type Item struct {
	ID       string  `json:"id,omitempty" bson:"id,omitempty"`
	Name     string  `json:"name" bson:"name"`
	Size     float64 `json:"size,omitempty" bson:"size,omitempty"`
	Selected bool    `json:"selected,omitempty" bson:"selected,omitempty"`
	Children []Item  `json:"children,omitempty" bson:"children,omitempty"`
}

// Entry is one row of a flat hierarchy, linked to its parent by id.
type Entry struct {
	ID       string  `json:"id,omitempty" bson:"id,omitempty"`
	Name     string  `json:"name" bson:"name"`
	Size     float64 `json:"size,omitempty" bson:"size,omitempty"`
	Selected bool    `json:"selected,omitempty" bson:"selected,omitempty"`
	ParentID string  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}

// Validate checks the snapshot for wire-level problems worth rejecting at
// an API boundary. The normalizer itself tolerates anything; this is for
// surfaces that want to tell the caller their input is junk.
func (s *Snapshot) Validate() error {
	if len(s.Items) == 0 && len(s.Entries) == 0 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no items")
	}
	for i := range s.Items {
		if err := validateItem(&s.Items[i]); err != nil {
			return err
		}
	}
	for i := range s.Entries {
		if err := errors.ValidateNodeName(s.Entries[i].Name); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it *Item) error {
	if err := errors.ValidateNodeName(it.Name); err != nil {
		return err
	}
	for i := range it.Children {
		if err := validateItem(&it.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// Tree normalizes the snapshot into a [tree.Tree]. Snapshots where nothing
// is marked selected are treated as fully selected; an explicit partial
// selection is honored as-is.
func (s *Snapshot) Tree() *tree.Tree {
	if len(s.Items) > 0 {
		items := make([]*tree.Item, len(s.Items))
		all := !anyItemSelected(s.Items)
		for i := range s.Items {
			items[i] = toTreeItem(&s.Items[i], all)
		}
		return tree.Normalize(items)
	}

	all := true
	for _, e := range s.Entries {
		if e.Selected {
			all = false
			break
		}
	}
	entries := make([]tree.Entry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = tree.Entry{
			ID:       e.ID,
			Name:     e.Name,
			Size:     e.Size,
			Selected: e.Selected || all,
			ParentID: e.ParentID,
		}
	}
	return tree.NormalizeFlat(entries)
}

func anyItemSelected(items []Item) bool {
	for i := range items {
		if items[i].Selected || anyItemSelected(items[i].Children) {
			return true
		}
	}
	return false
}

func toTreeItem(it *Item, all bool) *tree.Item {
	out := &tree.Item{
		ID:       it.ID,
		Name:     it.Name,
		Size:     it.Size,
		Selected: it.Selected || all,
	}
	for i := range it.Children {
		out.Children = append(out.Children, toTreeItem(&it.Children[i], all))
	}
	return out
}

// =============================================================================
// Frame - Layout Output
// =============================================================================

// Frame is the canonical output format: one settled (or mid-flight) layout
// of a snapshot at a given viewport. Used for API responses, storage,
// caching, and file export.
type Frame struct {
	Name    string  `json:"name,omitempty" bson:"name,omitempty"`
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	Settled bool    `json:"settled" bson:"settled"`
	Ticks   int     `json:"ticks,omitempty" bson:"ticks,omitempty"`

	Nodes []FrameNode `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []FrameEdge `json:"edges,omitempty" bson:"edges,omitempty"`
}

// FrameNode is one positioned node.
type FrameNode struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Depth    int     `json:"depth" bson:"depth"`
	Size     float64 `json:"size,omitempty" bson:"size,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	R        float64 `json:"r" bson:"r"`
	Expanded bool    `json:"expanded,omitempty" bson:"expanded,omitempty"`
}

// FrameEdge is one parent→child connector with resolved endpoints.
type FrameEdge struct {
	From string  `json:"from" bson:"from"`
	To   string  `json:"to" bson:"to"`
	X1   float64 `json:"x1" bson:"x1"`
	Y1   float64 `json:"y1" bson:"y1"`
	X2   float64 `json:"x2" bson:"x2"`
	Y2   float64 `json:"y2" bson:"y2"`
}

// Node returns the frame node with the given id, or nil.
func (f *Frame) Node(id string) *FrameNode {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}
