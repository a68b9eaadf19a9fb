package orbit

import (
	"math"
	"testing"

	"github.com/davemaier/orbitmap/pkg/tree"
	"github.com/davemaier/orbitmap/pkg/view"
)

func fixture() *tree.Tree {
	return tree.Normalize([]*tree.Item{{
		ID: "root", Name: "root", Selected: true,
		Children: []*tree.Item{
			{ID: "A", Name: "A", Size: 20, Selected: true,
				Children: []*tree.Item{
					{ID: "A1", Name: "A1", Size: 12, Selected: true},
					{ID: "A2", Name: "A2", Size: 8, Selected: true},
				}},
			{ID: "B", Name: "B", Size: 10, Selected: true},
		},
	}})
}

func noPos(string) (float64, float64, bool) { return 0, 0, false }

func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func TestPlan_RootAnchored(t *testing.T) {
	p := NewPlanner(Config{})
	got := p.Plan(fixture(), view.NewExpansion("root"), noPos, 400, 300)

	root := got["root"]
	if root.TargetX != 400 || root.TargetY != 300 {
		t.Errorf("root target = (%v, %v), want (400, 300)", root.TargetX, root.TargetY)
	}
	if root.Radius != 0 {
		t.Errorf("root radius = %v, want 0", root.Radius)
	}
}

func TestPlan_TwoChildrenOppositeAngles(t *testing.T) {
	p := NewPlanner(Config{})
	got := p.Plan(fixture(), view.NewExpansion("root"), noPos, 0, 0)

	a, b := got["A"], got["B"]
	if d := angleDiff(a.Angle, b.Angle); math.Abs(d-math.Pi) > 1e-9 {
		t.Errorf("angle separation = %v rad, want π", d)
	}
	if a.Radius != b.Radius {
		t.Errorf("radii differ: %v vs %v (neither child is expanded)", a.Radius, b.Radius)
	}
	// Targets sit on the ring.
	if r := math.Hypot(a.TargetX, a.TargetY); math.Abs(r-a.Radius) > 1e-9 {
		t.Errorf("A distance from root = %v, want %v", r, a.Radius)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	p := NewPlanner(Config{})
	e := view.NewExpansion("root", "A")
	first := p.Plan(fixture(), e, noPos, 0, 0)
	second := p.Plan(fixture(), e, noPos, 0, 0)

	if len(first) != len(second) {
		t.Fatalf("plan sizes differ: %d vs %d", len(first), len(second))
	}
	for id, f := range first {
		s := second[id]
		if f != s {
			t.Errorf("placement %q differs: %+v vs %+v", id, f, s)
		}
	}
}

func TestPlan_OnlyVisibleNodesPlanned(t *testing.T) {
	p := NewPlanner(Config{})
	got := p.Plan(fixture(), view.NewExpansion("root"), noPos, 0, 0)

	if _, ok := got["A1"]; ok {
		t.Error("A1 planned while A is collapsed")
	}
	if len(got) != 3 {
		t.Errorf("planned %d nodes, want 3", len(got))
	}
}

func TestPlan_GrandchildrenOrbitChildPosition(t *testing.T) {
	p := NewPlanner(Config{})
	// A has a live position away from its target; grandchildren follow it.
	pos := func(id string) (float64, float64, bool) {
		if id == "A" {
			return 500, 500, true
		}
		return 0, 0, false
	}
	got := p.Plan(fixture(), view.NewExpansion("root", "A"), pos, 0, 0)

	a1 := got["A1"]
	d := math.Hypot(a1.TargetX-500, a1.TargetY-500)
	if math.Abs(d-a1.Radius) > 1e-9 {
		t.Errorf("A1 distance from A's live position = %v, want %v", d, a1.Radius)
	}
}

func TestPlan_SingleChildContinuesSpoke(t *testing.T) {
	tr := tree.Normalize([]*tree.Item{{
		ID: "root", Name: "root", Selected: true,
		Children: []*tree.Item{
			{ID: "A", Name: "A", Size: 5, Selected: true,
				Children: []*tree.Item{
					{ID: "A1", Name: "A1", Size: 5, Selected: true},
				}},
		},
	}})
	p := NewPlanner(Config{})
	got := p.Plan(tr, view.NewExpansion("root", "A"), noPos, 0, 0)

	a, a1 := got["A"], got["A1"]
	// Sole child of the root defaults to the fixed offset.
	if math.Abs(a.Angle-p.Config().AngleOffset) > 1e-9 {
		t.Errorf("A angle = %v, want offset %v", a.Angle, p.Config().AngleOffset)
	}
	// A's sole child continues A's spoke instead of turning.
	if math.Abs(angleDiff(a1.Angle, a.Angle)) > 1e-9 {
		t.Errorf("A1 angle = %v, want inbound angle %v", a1.Angle, a.Angle)
	}
}

func TestPlan_ExpandedChildPushedOutward(t *testing.T) {
	p := NewPlanner(Config{})
	collapsed := p.Plan(fixture(), view.NewExpansion("root"), noPos, 0, 0)
	expanded := p.Plan(fixture(), view.NewExpansion("root", "A"), noPos, 0, 0)

	if expanded["A"].Radius <= collapsed["A"].Radius {
		t.Errorf("expanded A radius = %v, want > collapsed %v",
			expanded["A"].Radius, collapsed["A"].Radius)
	}
	// B has no children; expansion state elsewhere leaves it alone.
	if expanded["B"].Radius != collapsed["B"].Radius {
		t.Errorf("B radius changed: %v vs %v", expanded["B"].Radius, collapsed["B"].Radius)
	}
}

func TestPlan_DenseFanOutPushedOutward(t *testing.T) {
	sparse := &tree.Item{ID: "root", Name: "r", Selected: true}
	dense := &tree.Item{ID: "root", Name: "r", Selected: true}
	for _, n := range []string{"a", "b"} {
		sparse.Children = append(sparse.Children, &tree.Item{ID: n, Name: n, Size: 10, Selected: true})
	}
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
		"k", "l", "m", "n", "o", "p", "q", "r", "s", "t"} {
		dense.Children = append(dense.Children, &tree.Item{ID: n, Name: n, Size: 10, Selected: true})
	}

	p := NewPlanner(Config{})
	e := view.NewExpansion("root")
	rSparse := p.Plan(tree.Normalize([]*tree.Item{sparse}), e, noPos, 0, 0)["a"].Radius
	rDense := p.Plan(tree.Normalize([]*tree.Item{dense}), e, noPos, 0, 0)["a"].Radius

	if rDense <= rSparse {
		t.Errorf("dense ring radius = %v, want > sparse %v", rDense, rSparse)
	}
}

func TestPlan_DeeperRingsAreFarther(t *testing.T) {
	p := NewPlanner(Config{})
	got := p.Plan(fixture(), view.NewExpansion("root", "A"), noPos, 0, 0)

	// A1 orbits a depth-1 parent; A orbits the depth-0 root. With identical
	// fan-out pressure the deeper ring must not shrink below the shallow one
	// minus the expansion boost.
	if got["A1"].Radius <= 0 {
		t.Fatalf("A1 radius = %v, want > 0", got["A1"].Radius)
	}
	base := p.Config().BaseRadius
	if got["A1"].Radius < base {
		t.Errorf("depth-2 ring radius = %v, want >= base %v", got["A1"].Radius, base)
	}
}

func TestPlan_EmptyTree(t *testing.T) {
	p := NewPlanner(Config{})
	got := p.Plan(tree.Normalize(nil), view.NewExpansion(), noPos, 0, 0)
	if len(got) != 0 {
		t.Errorf("Plan(empty) = %d placements, want 0", len(got))
	}
}

func TestNodeRadius_Bounds(t *testing.T) {
	tr := fixture()
	p := NewPlanner(Config{})
	cfg := p.Config()

	root, _ := tr.Node("root")
	small, _ := tr.Node("A2")

	rRoot := p.NodeRadius(tr, root)
	rSmall := p.NodeRadius(tr, small)

	if rRoot > cfg.MaxNodeRadius || rRoot < cfg.MinNodeRadius {
		t.Errorf("root radius %v outside [%v, %v]", rRoot, cfg.MinNodeRadius, cfg.MaxNodeRadius)
	}
	if rSmall >= rRoot {
		t.Errorf("smaller node radius %v >= root radius %v", rSmall, rRoot)
	}
	if rSmall < cfg.MinNodeRadius {
		t.Errorf("radius %v below minimum %v", rSmall, cfg.MinNodeRadius)
	}
}
