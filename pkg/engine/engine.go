// Package engine ties the layout pipeline together: it owns the normalized
// tree, the expansion state, the orbit planner, and the force simulation,
// and exposes the interaction surface the host UI drives — snapshot updates,
// expand/collapse toggles, drag gestures, and the per-frame step.
//
// The engine is single-threaded and frame-driven. The host either calls
// [Engine.Step] once per animation frame, or hands a context to
// [Engine.Run] and consumes [Engine.Positions] between ticks. Requesting a
// new layout while a Run loop is active cancels the old loop before the new
// state is installed, so two writers never race on the same body set.
// [Engine.Detach] tears everything down; no tick fires afterward.
//
// Every input fault is recovered locally (empty snapshots, unknown ids,
// degenerate viewports); the engine never returns a hard failure from the
// frame path. Visual imperfection beats a crashed layout.
package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/davemaier/orbitmap/pkg/orbit"
	"github.com/davemaier/orbitmap/pkg/physics"
	"github.com/davemaier/orbitmap/pkg/tree"
	"github.com/davemaier/orbitmap/pkg/view"
)

// Config configures a layout engine.
type Config struct {
	Orbit   orbit.Config   `toml:"orbit"`
	Physics physics.Config `toml:"physics"`

	// DiscardCollapsed drops the simulation state of nodes hidden by a
	// collapse. The default (false) parks their position and velocity so a
	// later re-expansion animates from where they left off.
	DiscardCollapsed bool `toml:"discard_collapsed"`

	// Logger receives debug-level layout events. Defaults to a discard
	// logger; the engine is quiet unless asked not to be.
	Logger *log.Logger `toml:"-"`
}

// NodePosition is one node's draw position for the current tick.
type NodePosition struct {
	ID string
	X  float64
	Y  float64
}

// EdgeLine is one visible parent→child connector for the current tick.
type EdgeLine struct {
	ID string // child node id
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// Engine is a live layout instance for one map. Not safe for concurrent
// use; all calls must come from the host's frame loop.
type Engine struct {
	cfg     Config
	logger  *log.Logger
	planner *orbit.Planner
	sim     *physics.Sim

	tree *tree.Tree
	exp  *view.Expansion

	viewW, viewH float64
	anchor       physics.Vec
	anchorMoved  bool // user dragged the root; stop following viewport center

	dragging string // node id mid-drag, empty when free

	// parked holds simulation state of collapsed-away nodes for seamless
	// re-expansion. Unused when DiscardCollapsed is set.
	parked map[string]physics.Body

	loop     *loopHandle
	detached bool
}

// New creates an engine with an empty tree. Call [Engine.SetViewport] and
// [Engine.SetSnapshot] before stepping.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		planner: orbit.NewPlanner(cfg.Orbit),
		sim:     physics.NewSim(cfg.Physics),
		tree:    tree.Normalize(nil),
		exp:     view.NewExpansion(),
		parked:  make(map[string]physics.Body),
	}
}

// Tree returns the current normalized tree.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Expansion returns the live expansion set. Mutating it directly bypasses
// reconciliation; prefer [Engine.ToggleExpand].
func (e *Engine) Expansion() *view.Expansion { return e.exp }

// Settled reports whether the simulation is at rest. The renderer may use
// this to stop redrawing non-essential decoration.
func (e *Engine) Settled() bool { return e.sim.Settled() }

// Dragging returns the id of the node currently being dragged, or "".
func (e *Engine) Dragging() string { return e.dragging }

// SetViewport updates the viewport dimensions. The root anchor follows the
// viewport center until the user drags the root somewhere else. A
// degenerate (zero or negative) viewport is remembered but planning and
// integration skip frames until a valid resize arrives.
func (e *Engine) SetViewport(w, h float64) {
	if e.detached {
		return
	}
	e.viewW, e.viewH = w, h
	if w <= 0 || h <= 0 {
		return
	}
	if !e.anchorMoved {
		e.anchor = physics.Vec{X: w / 2, Y: h / 2}
	}
	e.reconcile()
	e.sim.Wake()
}

// SetSnapshot replaces the hierarchy with a fresh snapshot. Nodes that keep
// their identity retain position and velocity so the transition animates;
// nodes that vanish are discarded. Expansion state carries over by id.
func (e *Engine) SetSnapshot(items []*tree.Item) {
	e.SetTree(tree.Normalize(items))
}

// SetTree is [Engine.SetSnapshot] for an already-normalized tree.
func (e *Engine) SetTree(t *tree.Tree) {
	if e.detached {
		return
	}
	e.stopLoop()
	if t == nil {
		t = tree.Normalize(nil)
	}
	e.tree = t
	// The root starts open; a map that renders a single lone circle on
	// first load reads as broken.
	if root := t.Root(); root != "" && !e.exp.IsExpanded(root) {
		e.exp.Expand(root)
	}
	e.dropUnknownParked()
	e.reconcile()
	e.logger.Debug("snapshot installed", "nodes", t.Len(), "visible", e.sim.Len())
}

// ToggleExpand flips a node's expansion (the double-click gesture) and
// reports the new state. Toggling a leaf or unknown id is a no-op.
func (e *Engine) ToggleExpand(id string) bool {
	if e.detached {
		return false
	}
	n, ok := e.tree.Node(id)
	if !ok || len(n.Children) == 0 {
		return e.exp.IsExpanded(id)
	}
	expanded := e.exp.Toggle(id)
	e.reconcile()
	e.logger.Debug("toggled expansion", "node", id, "expanded", expanded)
	return expanded
}

// reconcile aligns the simulation's body set with the currently visible
// nodes: survivors keep their state, hidden nodes are parked or discarded,
// newcomers are seeded at their parent's live position.
func (e *Engine) reconcile() {
	visible, edges := view.Resolve(e.tree, e.exp)

	keep := make(map[string]bool, len(visible))
	for _, n := range visible {
		keep[n.ID] = true
	}

	// Park or drop bodies that are no longer visible. Only nodes that still
	// exist in the tree are worth parking; vanished nodes never come back
	// under the same identity contract.
	if !e.cfg.DiscardCollapsed {
		for _, id := range e.sim.IDs() {
			if keep[id] {
				continue
			}
			if _, stillKnown := e.tree.Node(id); stillKnown {
				e.parked[id] = *e.sim.Body(id)
			}
		}
	}
	e.sim.Retain(keep)

	rootID := e.tree.Root()
	maxSize := 0.0
	if root, ok := e.tree.Node(rootID); ok {
		maxSize = root.Size
	}

	for _, n := range visible {
		if e.sim.Body(n.ID) != nil {
			continue
		}
		b, ok := e.parked[n.ID]
		if ok && !e.cfg.DiscardCollapsed {
			delete(e.parked, n.ID)
			b.Depth = n.Depth
			b.Radius = e.planner.NodeRadiusScaled(n, maxSize)
			b.Pinned = false
			e.sim.AddBody(b)
			continue
		}
		e.sim.AddBody(physics.Body{
			ID:     n.ID,
			Pos:    e.seedPosition(n),
			Radius: e.planner.NodeRadiusScaled(n, maxSize),
			Depth:  n.Depth,
		})
	}

	links := make([]physics.Link, len(edges))
	for i, ed := range edges {
		links[i] = physics.Link{ParentID: ed.ParentID, ChildID: ed.ChildID}
	}
	e.sim.SetLinks(links)

	if rootID != "" {
		e.sim.Pin(rootID, e.anchor)
	}
	e.plan()
}

// seedPosition places a brand-new body: at its parent's live position so it
// grows out of the branch, or at the anchor for roots.
func (e *Engine) seedPosition(n *tree.Node) physics.Vec {
	if n.ParentID != "" {
		if p := e.sim.Body(n.ParentID); p != nil {
			return p.Pos
		}
	}
	return e.anchor
}

// dropUnknownParked clears parked state for ids the new tree no longer has.
func (e *Engine) dropUnknownParked() {
	for id := range e.parked {
		if _, ok := e.tree.Node(id); !ok {
			delete(e.parked, id)
		}
	}
}

// plan runs a planning pass, refreshing every visible body's target against
// its parent's current position.
func (e *Engine) plan() {
	placements := e.planner.Plan(e.tree, e.exp, func(id string) (float64, float64, bool) {
		if b := e.sim.Body(id); b != nil {
			return b.Pos.X, b.Pos.Y, true
		}
		return 0, 0, false
	}, e.anchor.X, e.anchor.Y)

	for id, pl := range placements {
		e.sim.SetTarget(id, physics.Vec{X: pl.TargetX, Y: pl.TargetY}, pl.Radius)
	}
}

// Step advances the layout by one frame. Targets are re-planned against
// live parent positions first, then the integrator ticks once. Frames are
// skipped while detached, settled, or the viewport is degenerate.
func (e *Engine) Step(dt float64) {
	if e.detached || e.viewW <= 0 || e.viewH <= 0 {
		return
	}
	if e.sim.Settled() && e.dragging == "" {
		return
	}
	e.plan()
	e.sim.Step(dt)
}

// Positions returns the draw position of every visible node.
func (e *Engine) Positions() []NodePosition {
	ids := e.sim.IDs()
	out := make([]NodePosition, 0, len(ids))
	for _, id := range ids {
		b := e.sim.Body(id)
		out = append(out, NodePosition{ID: id, X: b.Pos.X, Y: b.Pos.Y})
	}
	return out
}

// EdgeLines returns endpoint coordinates for every visible edge, ready for
// connector drawing.
func (e *Engine) EdgeLines() []EdgeLine {
	links := e.sim.Links()
	out := make([]EdgeLine, 0, len(links))
	for _, l := range links {
		p, c := e.sim.Body(l.ParentID), e.sim.Body(l.ChildID)
		if p == nil || c == nil {
			continue
		}
		out = append(out, EdgeLine{
			ID: l.ChildID,
			X1: p.Pos.X, Y1: p.Pos.Y,
			X2: c.Pos.X, Y2: c.Pos.Y,
		})
	}
	return out
}

// NodeRadius returns the visual radius used for the given node, matching
// what collision separation assumes.
func (e *Engine) NodeRadius(id string) float64 {
	n, ok := e.tree.Node(id)
	if !ok {
		return 0
	}
	return e.planner.NodeRadius(e.tree, n)
}

// Detach tears the engine down: the run loop is cancelled, body state is
// dropped, and every subsequent call is a no-op. Used when the hosting view
// goes away.
func (e *Engine) Detach() {
	if e.detached {
		return
	}
	e.stopLoop()
	e.detached = true
	e.sim = physics.NewSim(e.cfg.Physics)
	e.tree = tree.Normalize(nil)
	e.parked = map[string]physics.Body{}
	e.dragging = ""
	e.logger.Debug("engine detached")
}
