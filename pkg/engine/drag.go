package engine

import "github.com/davemaier/orbitmap/pkg/physics"

// DragStart begins a drag gesture on a node. The node is pinned at its
// current position: it stops responding to the orbit and link springs but
// keeps repelling and colliding, so neighbors flow around the grab.
// Starting a drag on an unknown id, or while another drag is active,
// is ignored.
func (e *Engine) DragStart(id string) {
	if e.detached || e.dragging != "" {
		return
	}
	b := e.sim.Body(id)
	if b == nil {
		return
	}
	e.dragging = id
	e.sim.Pin(id, b.Pos)
	e.sim.Wake()
}

// DragMove pins the dragged node at exactly the pointer position; the body
// never lags or springs toward the pointer. Dragging the root relocates the
// whole map: the anchor follows the pointer, so every descendant's target
// moves with it. Moves for any id other than the active drag are ignored.
func (e *Engine) DragMove(id string, x, y float64) {
	if e.detached || e.dragging != id {
		return
	}
	pos := physics.Vec{X: x, Y: y}
	if id == e.tree.Root() {
		e.anchor = pos
		e.anchorMoved = true
	}
	e.sim.Pin(id, pos)
	e.sim.Wake()
}

// DragEnd releases the active drag. The node rejoins the springs at its
// release point with zero velocity, relaxing back to orbit rather than
// snapping. The root stays pinned at its new anchor. Ending a drag the
// engine does not own is ignored.
func (e *Engine) DragEnd(id string) {
	if e.detached || e.dragging != id {
		return
	}
	e.dragging = ""
	if id != e.tree.Root() {
		e.sim.Unpin(id)
	}
	e.sim.Wake()
}

// CancelDrag releases whatever drag is active, if any. Hosts call this when
// the pointer leaves the surface mid-gesture.
func (e *Engine) CancelDrag() {
	if e.dragging != "" {
		e.DragEnd(e.dragging)
	}
}
