package physics

// Force is one named component of the combined force model. Apply computes
// the acceleration the force contributes to a single body and must not
// mutate anything: the integrator reads all forces against pre-tick state
// and applies them at once.
type Force struct {
	Name  string
	Apply func(b *Body, s *Sim) Vec
}

// defaultForces returns the standard force list in application order. The
// order is part of the model's definition, not an implementation accident:
// spring terms first, pair repulsion last, so a reader can audit the full
// acceleration of a body top to bottom.
func defaultForces() []Force {
	return []Force{
		{Name: "orbit-spring", Apply: orbitSpring},
		{Name: "link-spring", Apply: linkSpring},
		{Name: "repulsion", Apply: repulsion},
	}
}

// orbitSpring pulls a body straight toward its planned target position.
// This is the "stay on your orbit" restoring force.
func orbitSpring(b *Body, s *Sim) Vec {
	return b.Target.Sub(b.Pos).Scale(s.cfg.SpringStrength)
}

// linkSpring pulls a child toward its planned orbit radius from its parent,
// caring only about distance, not angle. It absorbs disagreements between
// the angular plan and repulsion: a node shoved off its spoke is still held
// at ring distance.
func linkSpring(b *Body, s *Sim) Vec {
	parentID, ok := s.parentOf[b.ID]
	if !ok {
		return Vec{}
	}
	parent := s.bodies[parentID]
	if parent == nil || b.OrbitRadius <= 0 {
		return Vec{}
	}

	delta := b.Pos.Sub(parent.Pos)
	dist := delta.Len()
	dir := delta.Norm()
	if dist < s.cfg.Epsilon {
		dist = s.cfg.Epsilon
		dir = s.tieBreakDir()
	}

	stretch := dist - b.OrbitRadius
	return dir.Scale(-stretch * s.cfg.LinkStrength)
}

// repulsion applies inverse-square pair repulsion from every other body.
// Shallow pairs repel harder, keeping unrelated top-level branches apart
// while letting deep leaves pack closely.
func repulsion(b *Body, s *Sim) Vec {
	var total Vec
	for _, id := range s.order {
		o := s.bodies[id]
		if o == b {
			continue
		}

		delta := b.Pos.Sub(o.Pos)
		dist := delta.Len()
		dir := delta.Norm()
		if dist < s.cfg.Epsilon {
			dist = s.cfg.Epsilon
			dir = s.tieBreakDir()
		}

		strength := s.cfg.Repulsion * depthScale(b.Depth, o.Depth) / (dist * dist)
		total = total.Add(dir.Scale(strength))
	}
	return total
}

// depthScale boosts repulsion between shallow pairs. Two depth-1 branches
// repel at full strength; a pair of deep leaves at a fraction of it.
func depthScale(a, b int) float64 {
	min := a
	if b < min {
		min = b
	}
	return 2 / float64(2+min)
}
