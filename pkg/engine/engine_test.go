package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/davemaier/orbitmap/pkg/tree"
)

func mapFixture() []*tree.Item {
	return []*tree.Item{{
		ID: "root", Name: "home", Size: 100, Selected: true,
		Children: []*tree.Item{
			{ID: "a", Name: "photos", Size: 60, Selected: true, Children: []*tree.Item{
				{ID: "a1", Name: "raw", Size: 40, Selected: true},
				{ID: "a2", Name: "edits", Size: 20, Selected: true},
			}},
			{ID: "b", Name: "docs", Size: 30, Selected: true, Children: []*tree.Item{
				{ID: "b1", Name: "tax", Size: 30, Selected: true},
			}},
		},
	}}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Config{})
	e.SetViewport(1000, 800)
	e.SetSnapshot(mapFixture())
	return e
}

func stepN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Step(1)
	}
}

func settle(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; i < 3000; i++ {
		if e.Settled() {
			return
		}
		e.Step(1)
	}
	t.Fatal("engine did not settle within 3000 ticks")
}

func TestSetSnapshot_RootPinnedAtViewportCenter(t *testing.T) {
	e := newTestEngine(t)

	root := e.sim.Body("root")
	if root == nil {
		t.Fatal("no body for root")
	}
	if !root.Pinned {
		t.Error("root body is not pinned")
	}
	if root.Pos.X != 500 || root.Pos.Y != 400 {
		t.Errorf("root pinned at (%v, %v), want viewport center (500, 400)", root.Pos.X, root.Pos.Y)
	}
}

func TestSetSnapshot_OnlyVisibleNodesGetBodies(t *testing.T) {
	e := newTestEngine(t)

	// Root opens automatically; its children stay collapsed.
	for _, id := range []string{"root", "a", "b"} {
		if e.sim.Body(id) == nil {
			t.Errorf("missing body for visible node %q", id)
		}
	}
	for _, id := range []string{"a1", "a2", "b1"} {
		if e.sim.Body(id) != nil {
			t.Errorf("collapsed descendant %q has a body", id)
		}
	}
}

func TestToggleExpand_SeedsChildrenAtParent(t *testing.T) {
	e := newTestEngine(t)
	stepN(e, 30)

	parent := e.sim.Body("a").Pos
	if expanded := e.ToggleExpand("a"); !expanded {
		t.Fatal("ToggleExpand(a) = false, want true")
	}
	for _, id := range []string{"a1", "a2"} {
		b := e.sim.Body(id)
		if b == nil {
			t.Fatalf("missing body for %q after expansion", id)
		}
		if b.Pos != parent {
			t.Errorf("%q seeded at %v, want parent position %v", id, b.Pos, parent)
		}
	}
}

func TestToggleExpand_LeafIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	before := e.sim.Len()

	if e.ToggleExpand("b1") {
		t.Error("toggling a leaf reported expanded")
	}
	if e.ToggleExpand("missing") {
		t.Error("toggling an unknown id reported expanded")
	}
	if got := e.sim.Len(); got != before {
		t.Errorf("body count changed from %d to %d", before, got)
	}
}

func TestCollapse_ParksAndRestoresPositions(t *testing.T) {
	e := newTestEngine(t)
	e.ToggleExpand("a")
	stepN(e, 60)

	want := e.sim.Body("a1").Pos

	e.ToggleExpand("a") // collapse
	if e.sim.Body("a1") != nil {
		t.Fatal("collapsed node still has a body")
	}

	e.ToggleExpand("a") // re-expand without stepping in between
	got := e.sim.Body("a1").Pos
	if got != want {
		t.Errorf("re-expanded a1 at %v, want parked position %v", got, want)
	}
}

func TestCollapse_DiscardPolicyReseedsAtParent(t *testing.T) {
	e := New(Config{DiscardCollapsed: true})
	e.SetViewport(1000, 800)
	e.SetSnapshot(mapFixture())
	e.ToggleExpand("a")
	stepN(e, 60)

	e.ToggleExpand("a")
	e.ToggleExpand("a")

	parent := e.sim.Body("a").Pos
	if got := e.sim.Body("a1").Pos; got != parent {
		t.Errorf("discarded a1 reseeded at %v, want parent position %v", got, parent)
	}
}

func TestDrag_ExactPointerFidelity(t *testing.T) {
	e := newTestEngine(t)
	stepN(e, 10)

	e.DragStart("a")
	if got := e.Dragging(); got != "a" {
		t.Fatalf("Dragging() = %q, want %q", got, "a")
	}
	for i := 0; i < 5; i++ {
		x, y := 300+float64(i)*17, 250+float64(i)*9
		e.DragMove("a", x, y)
		e.Step(1)
		b := e.sim.Body("a")
		if b.Pos.X != x || b.Pos.Y != y {
			t.Fatalf("tick %d: dragged body at (%v, %v), want pointer (%v, %v)",
				i, b.Pos.X, b.Pos.Y, x, y)
		}
	}
}

func TestDrag_UnknownAndConcurrentIgnored(t *testing.T) {
	e := newTestEngine(t)

	e.DragStart("ghost")
	if e.Dragging() != "" {
		t.Error("drag started on unknown id")
	}

	e.DragStart("a")
	e.DragStart("b") // second gesture while one is active
	if got := e.Dragging(); got != "a" {
		t.Errorf("Dragging() = %q, want original drag %q", got, "a")
	}
	e.DragMove("b", 10, 10)
	if b := e.sim.Body("b"); b.Pinned {
		t.Error("DragMove for a non-active id pinned the body")
	}
}

func TestDragEnd_ReleasesWithZeroVelocity(t *testing.T) {
	e := newTestEngine(t)
	stepN(e, 10)

	e.DragStart("a")
	e.DragMove("a", 900, 100)
	e.DragEnd("a")

	b := e.sim.Body("a")
	if b.Pinned {
		t.Error("released body still pinned")
	}
	if b.Vel.Len() != 0 {
		t.Errorf("released body velocity %v, want zero", b.Vel)
	}
	if e.Dragging() != "" {
		t.Error("drag still active after release")
	}
}

func TestDragRoot_RelocatesWholeMap(t *testing.T) {
	e := newTestEngine(t)
	settle(t, e)

	e.DragStart("root")
	e.DragMove("root", 200, 200)
	e.DragEnd("root")

	root := e.sim.Body("root")
	if !root.Pinned || root.Pos.X != 200 || root.Pos.Y != 200 {
		t.Fatalf("root after drag: pinned=%v pos=%v, want pinned at (200, 200)", root.Pinned, root.Pos)
	}

	settle(t, e)
	for _, id := range []string{"a", "b"} {
		d := e.sim.Body(id).Pos.Sub(root.Pos).Len()
		if d > 400 {
			t.Errorf("%q settled %v away from the relocated root", id, d)
		}
		dOld := math.Hypot(e.sim.Body(id).Pos.X-500, e.sim.Body(id).Pos.Y-400)
		if dOld < d {
			t.Errorf("%q still orbits the old anchor (%.1f from old vs %.1f from new)", id, dOld, d)
		}
	}
}

func TestDegenerateViewport_SkipsFrames(t *testing.T) {
	e := newTestEngine(t)
	stepN(e, 5)
	before := e.Positions()

	e.SetViewport(0, 0)
	stepN(e, 20)

	after := e.Positions()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("positions moved during degenerate viewport: %v -> %v", before[i], after[i])
		}
	}

	e.SetViewport(1000, 800)
	e.Step(1)
	if e.sim.Body("root") == nil {
		t.Fatal("engine did not resume after valid resize")
	}
}

func TestSettled_StepDoesNoWork(t *testing.T) {
	e := newTestEngine(t)
	settle(t, e)

	before := e.Positions()
	stepN(e, 10)
	after := e.Positions()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("settled engine moved node %v: %v -> %v", before[i].ID, before[i], after[i])
		}
	}
}

func TestEdgeLines_MatchBodies(t *testing.T) {
	e := newTestEngine(t)
	e.ToggleExpand("a")
	stepN(e, 5)

	lines := e.EdgeLines()
	if len(lines) != 4 {
		t.Fatalf("got %d edge lines, want 4", len(lines))
	}
	for _, l := range lines {
		child := e.sim.Body(l.ID)
		if l.X2 != child.Pos.X || l.Y2 != child.Pos.Y {
			t.Errorf("edge to %q ends at (%v, %v), body at %v", l.ID, l.X2, l.Y2, child.Pos)
		}
	}
}

func TestDetach_EverythingIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	e.Detach()

	if got := len(e.Positions()); got != 0 {
		t.Errorf("detached engine still reports %d positions", got)
	}
	e.SetSnapshot(mapFixture())
	e.ToggleExpand("a")
	e.DragStart("a")
	e.Step(1)
	if got := len(e.Positions()); got != 0 {
		t.Errorf("detached engine accepted new state (%d positions)", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	frames := 0
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 240, func(*Engine) { frames++ })
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if frames == 0 {
		t.Error("frame callback never fired")
	}
}
