package physics

import (
	"math"
	"slices"
	"testing"
)

// stepUntilSettled ticks the sim up to max times, returning the tick count
// at settlement or max if it never settles.
func stepUntilSettled(s *Sim, max int) int {
	for i := 0; i < max; i++ {
		s.Step(1)
		if s.Settled() {
			return i + 1
		}
	}
	return max
}

func TestStep_EmptySimIsSettled(t *testing.T) {
	s := NewSim(Config{})
	s.Step(1)
	if !s.Settled() {
		t.Error("empty sim must settle immediately")
	}
	if s.Energy() != 0 {
		t.Errorf("Energy() = %v, want 0", s.Energy())
	}
}

func TestStep_ConvergesToTarget(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "n", Pos: Vec{X: 300, Y: -200}, Target: Vec{X: 0, Y: 0}, Radius: 10})

	ticks := stepUntilSettled(s, 500)
	if ticks == 500 {
		t.Fatal("sim never settled")
	}

	b := s.Body("n")
	if dist := b.Pos.Len(); dist > 5 {
		t.Errorf("settled %v units from target, want near 0", dist)
	}
}

func TestStep_SettledSimStaysSettled(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "n", Pos: Vec{X: 1, Y: 1}, Target: Vec{X: 0, Y: 0}, Radius: 10})
	stepUntilSettled(s, 500)

	pos := s.Body("n").Pos
	s.Step(1)
	if !s.Settled() {
		t.Error("settled sim woke itself without perturbation")
	}
	if moved := s.Body("n").Pos.Sub(pos).Len(); moved > 1 {
		t.Errorf("settled body drifted %v units in one tick", moved)
	}
}

func TestStep_PerturbationWakes(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "n", Pos: Vec{}, Target: Vec{}, Radius: 10})
	stepUntilSettled(s, 100)

	s.SetTarget("n", Vec{X: 400, Y: 0}, 0)
	if s.Settled() {
		t.Error("retargeting must wake the sim")
	}
}

func TestPin_ExactPositionEveryTick(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "drag", Pos: Vec{}, Target: Vec{X: 500, Y: 500}, Radius: 10})
	s.AddBody(Body{ID: "other", Pos: Vec{X: 30, Y: 0}, Target: Vec{X: 100, Y: 0}, Radius: 10})

	// Pointer fidelity: the pinned body sits exactly at the pin on every
	// tick, regardless of spring pull or neighbors.
	for i := 0; i < 10; i++ {
		pin := Vec{X: float64(i * 7), Y: float64(-i * 3)}
		s.Pin("drag", pin)
		s.Step(1)
		if got := s.Body("drag").Pos; got != pin {
			t.Fatalf("tick %d: pinned body at %+v, want %+v", i, got, pin)
		}
	}
}

func TestPin_PinnedStillDisplacesNeighbors(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "pinned", Radius: 20})
	s.AddBody(Body{ID: "free", Pos: Vec{X: 5, Y: 0}, Target: Vec{X: 5, Y: 0}, Radius: 20})
	s.Pin("pinned", Vec{})

	s.Step(1)

	a, b := s.Body("pinned"), s.Body("free")
	if a.Pos.Len() != 0 {
		t.Errorf("pinned body moved to %+v", a.Pos)
	}
	gap := b.Pos.Sub(a.Pos).Len()
	if gap <= 5 {
		t.Errorf("free neighbor only %v from pinned body, want pushed away", gap)
	}
}

func TestUnpin_RelaxesBackWithoutOscillation(t *testing.T) {
	s := NewSim(Config{})
	target := Vec{X: 0, Y: 120}
	s.AddBody(Body{ID: "n", Pos: target, Target: target, Radius: 10})

	s.Pin("n", Vec{X: 400, Y: 0})
	s.Step(1)
	s.Unpin("n")

	if s.Body("n").Vel != (Vec{}) {
		t.Fatal("released body must start at rest")
	}

	// Distance to target must shrink tick over tick until convergence,
	// with no overshoot beyond the starting distance.
	prev := s.Body("n").Pos.Sub(target).Len()
	start := prev
	for i := 0; i < 300 && !s.Settled(); i++ {
		s.Step(1)
		d := s.Body("n").Pos.Sub(target).Len()
		if d > start {
			t.Fatalf("tick %d: overshoot beyond release distance: %v > %v", i, d, start)
		}
		if d > prev+1 {
			t.Fatalf("tick %d: distance grew %v → %v", i, prev, d)
		}
		prev = d
	}
	if prev > 5 {
		t.Errorf("released body stopped %v from target", prev)
	}
}

func TestRetain_KeepsSurvivorState(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "keep", Pos: Vec{X: 11, Y: 22}, Vel: Vec{X: 1, Y: 2}, Radius: 10})
	s.AddBody(Body{ID: "drop", Pos: Vec{X: 99, Y: 99}, Radius: 10})

	removed := s.Retain(map[string]bool{"keep": true})

	if removed != 1 {
		t.Errorf("Retain removed %d, want 1", removed)
	}
	if s.Body("drop") != nil {
		t.Error("dropped body still present")
	}
	b := s.Body("keep")
	if b.Pos != (Vec{X: 11, Y: 22}) || b.Vel != (Vec{X: 1, Y: 2}) {
		t.Errorf("survivor state reset: pos %+v vel %+v", b.Pos, b.Vel)
	}
}

func TestStep_CoincidentBodiesNeverNaN(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "a", Pos: Vec{X: 50, Y: 50}, Target: Vec{X: 50, Y: 50}, Radius: 12})
	s.AddBody(Body{ID: "b", Pos: Vec{X: 50, Y: 50}, Target: Vec{X: 50, Y: 50}, Radius: 12})

	for i := 0; i < 50; i++ {
		s.Step(1)
	}

	for _, id := range []string{"a", "b"} {
		p := s.Body(id).Pos
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("body %q at NaN position", id)
		}
	}
	if gap := s.Body("a").Pos.Sub(s.Body("b").Pos).Len(); gap < 1 {
		t.Errorf("coincident bodies still %v apart, want separated", gap)
	}
}

func TestStep_NoOverlapAtRest(t *testing.T) {
	s := NewSim(Config{})
	// A crowded ring: ten bodies share nearby targets.
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i, id := range ids {
		s.AddBody(Body{
			ID:     id,
			Pos:    Vec{X: float64(i), Y: 0},
			Target: Vec{X: float64(i % 3), Y: float64(i % 2)},
			Radius: 14,
			Depth:  1,
		})
	}

	stepUntilSettled(s, 2000)

	const tolerance = 1.0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := s.Body(ids[i]), s.Body(ids[j])
			gap := a.Pos.Sub(b.Pos).Len()
			min := a.Radius + b.Radius - tolerance
			if gap < min {
				t.Errorf("%s/%s overlap: distance %v < %v", ids[i], ids[j], gap, min)
			}
		}
	}
}

func TestForceNames_Order(t *testing.T) {
	s := NewSim(Config{})
	want := []string{"orbit-spring", "link-spring", "repulsion"}
	if got := s.ForceNames(); !slices.Equal(got, want) {
		t.Errorf("ForceNames() = %v, want %v", got, want)
	}
}

func TestSims_DoNotShareState(t *testing.T) {
	a := NewSim(Config{})
	b := NewSim(Config{})
	a.AddBody(Body{ID: "n", Pos: Vec{X: 100}, Target: Vec{}, Radius: 10})
	b.AddBody(Body{ID: "n", Pos: Vec{X: 100}, Target: Vec{}, Radius: 10})

	a.Step(1)

	if got := b.Body("n").Pos; got != (Vec{X: 100}) {
		t.Errorf("stepping sim A moved sim B's body to %+v", got)
	}
}

func TestStep_InvalidDtIgnored(t *testing.T) {
	s := NewSim(Config{})
	s.AddBody(Body{ID: "n", Pos: Vec{X: 10}, Target: Vec{}, Radius: 10})

	s.Step(0)
	s.Step(-1)
	s.Step(math.NaN())

	if got := s.Body("n").Pos; got != (Vec{X: 10}) {
		t.Errorf("invalid dt moved body to %+v", got)
	}
}
