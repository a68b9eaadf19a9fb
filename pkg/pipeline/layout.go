package pipeline

import (
	"sort"

	"github.com/davemaier/orbitmap/pkg/engine"
	"github.com/davemaier/orbitmap/pkg/snapshot"
	"github.com/davemaier/orbitmap/pkg/tree"
)

// Settle runs the orbital simulation for a tree until it comes to rest (or
// MaxTicks elapses) and captures the result as a frame. This is the
// headless, batch form of the interactive engine: same physics, no drags.
func Settle(t *tree.Tree, opts Options) (*snapshot.Frame, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	eng := engine.New(opts.Engine)
	eng.SetViewport(opts.Width, opts.Height)
	eng.SetTree(t)
	applyExpansion(eng, opts)

	ticks := 0
	for ticks < opts.MaxTicks && !eng.Settled() {
		eng.Step(1)
		ticks++
	}

	return buildFrame(eng, opts.Name, opts.Width, opts.Height, ticks), nil
}

// applyExpansion opens every branch shallower than ExpandDepth plus the
// explicitly requested ids. Parents are opened before children so each
// toggle lands on a visible node.
func applyExpansion(eng *engine.Engine, opts Options) {
	t := eng.Tree()

	var open []*tree.Node
	for _, n := range t.Nodes() {
		if n.IsLeaf() {
			continue
		}
		if n.Depth < opts.ExpandDepth {
			open = append(open, n)
		}
	}
	for _, id := range opts.Expanded {
		if n, ok := t.Node(id); ok && !n.IsLeaf() {
			open = append(open, n)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Depth < open[j].Depth })

	for _, n := range open {
		if !eng.Expansion().IsExpanded(n.ID) {
			eng.ToggleExpand(n.ID)
		}
	}
}

// buildFrame captures the engine's current tick as a serializable frame.
func buildFrame(eng *engine.Engine, name string, w, h float64, ticks int) *snapshot.Frame {
	t := eng.Tree()
	exp := eng.Expansion()

	f := &snapshot.Frame{
		Name:    name,
		Width:   w,
		Height:  h,
		Settled: eng.Settled(),
		Ticks:   ticks,
	}

	for _, p := range eng.Positions() {
		n, ok := t.Node(p.ID)
		if !ok {
			continue
		}
		f.Nodes = append(f.Nodes, snapshot.FrameNode{
			ID:       n.ID,
			Name:     n.Name,
			Depth:    n.Depth,
			Size:     n.Size,
			X:        p.X,
			Y:        p.Y,
			R:        eng.NodeRadius(n.ID),
			Expanded: !n.IsLeaf() && exp.IsExpanded(n.ID),
		})
	}

	for _, l := range eng.EdgeLines() {
		from := ""
		if parent := t.Parent(l.ID); parent != nil {
			from = parent.ID
		}
		f.Edges = append(f.Edges, snapshot.FrameEdge{
			From: from,
			To:   l.ID,
			X1:   l.X1,
			Y1:   l.Y1,
			X2:   l.X2,
			Y2:   l.Y2,
		})
	}

	return f
}
