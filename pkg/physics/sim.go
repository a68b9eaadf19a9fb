package physics

import (
	"math"
	"math/rand"
	"slices"
	"sort"
)

// Config holds the integrator tuning parameters.
// Use [DefaultConfig] and override selectively.
type Config struct {
	// SpringStrength pulls each body toward its planned target.
	SpringStrength float64 `toml:"spring_strength"`

	// LinkStrength pulls each child toward its orbit radius from its parent,
	// independent of angle.
	LinkStrength float64 `toml:"link_strength"`

	// Repulsion is the inverse-square pair repulsion constant. The effective
	// strength is scaled up for shallow pairs so unrelated branches keep
	// their distance.
	Repulsion float64 `toml:"repulsion"`

	// Damping is the per-tick velocity decay factor in (0, 1).
	Damping float64 `toml:"damping"`

	// MaxSpeed clamps per-tick velocity to keep the system stable when a
	// re-plan moves targets far away.
	MaxSpeed float64 `toml:"max_speed"`

	// CollisionIterations bounds the per-tick separation passes. Full
	// convergence per tick is deliberately not attempted; frame pacing wins.
	CollisionIterations int `toml:"collision_iterations"`

	// CollisionPadding is extra clearance added to the sum of two bodies'
	// radii before they count as overlapping.
	CollisionPadding float64 `toml:"collision_padding"`

	// SettleThreshold is the per-body average kinetic energy below which the
	// sim reports settled.
	SettleThreshold float64 `toml:"settle_threshold"`

	// Epsilon substitutes for zero distances in force math.
	Epsilon float64 `toml:"epsilon"`

	// Seed drives the tie-break direction for coincident bodies, keeping
	// runs reproducible.
	Seed uint64 `toml:"seed"`
}

// DefaultConfig returns the integrator tuning used when no config file
// overrides it. Values are calibrated for dt = 1 (one animation frame).
func DefaultConfig() Config {
	// Spring and damping together are slightly over-damped: a released node
	// approaches its target without ringing. The discrete system is stable
	// and monotone while spring·damping stays below (1-√damping)².
	return Config{
		SpringStrength:      0.06,
		LinkStrength:        0.035,
		Repulsion:           2400,
		Damping:             0.6,
		MaxSpeed:            60,
		CollisionIterations: 3,
		CollisionPadding:    4,
		SettleThreshold:     0.02,
		Epsilon:             0.01,
		Seed:                42,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SpringStrength <= 0 {
		c.SpringStrength = def.SpringStrength
	}
	if c.LinkStrength <= 0 {
		c.LinkStrength = def.LinkStrength
	}
	if c.Repulsion <= 0 {
		c.Repulsion = def.Repulsion
	}
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = def.Damping
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = def.MaxSpeed
	}
	if c.CollisionIterations <= 0 {
		c.CollisionIterations = def.CollisionIterations
	}
	if c.CollisionPadding < 0 {
		c.CollisionPadding = def.CollisionPadding
	}
	if c.SettleThreshold <= 0 {
		c.SettleThreshold = def.SettleThreshold
	}
	if c.Epsilon <= 0 {
		c.Epsilon = def.Epsilon
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}

// Body is one node's simulation state.
type Body struct {
	ID          string
	Pos         Vec
	Vel         Vec
	Target      Vec     // Planned position (pkg/orbit)
	OrbitRadius float64 // Planned distance to parent; 0 for roots
	Radius      float64 // Visual radius for collision separation
	Depth       int
	Pinned      bool // Position is authoritative (root anchor or active drag)
}

// Link is a parent→child edge participating in the link spring.
type Link struct {
	ParentID string
	ChildID  string
}

// Sim is a self-contained simulation context. The zero value is not usable;
// use [NewSim]. Sim is not safe for concurrent use.
type Sim struct {
	cfg      Config
	bodies   map[string]*Body
	order    []string // deterministic iteration order (insertion)
	links    []Link
	parentOf map[string]string
	forces   []Force
	rng      *rand.Rand
	energy   float64
	settled  bool
}

// NewSim creates a simulation with the default force list:
// orbit spring, link spring, repulsion. Collision separation runs as a
// positional pass after integration, not as a force.
func NewSim(cfg Config) *Sim {
	cfg = cfg.withDefaults()
	return &Sim{
		cfg:      cfg,
		bodies:   make(map[string]*Body),
		parentOf: make(map[string]string),
		forces:   defaultForces(),
		rng:      rand.New(rand.NewSource(int64(cfg.Seed))),
	}
}

// Config returns the sim's effective tuning.
func (s *Sim) Config() Config { return s.cfg }

// ForceNames lists the active forces in application order.
func (s *Sim) ForceNames() []string {
	names := make([]string, len(s.forces))
	for i, f := range s.forces {
		names[i] = f.Name
	}
	return names
}

// Body returns the body with the given id, or nil.
func (s *Sim) Body(id string) *Body { return s.bodies[id] }

// Len returns the number of bodies.
func (s *Sim) Len() int { return len(s.bodies) }

// IDs returns all body ids in deterministic insertion order.
func (s *Sim) IDs() []string { return slices.Clone(s.order) }

// AddBody inserts a body, replacing any previous body with the same id, and
// wakes the sim. The caller keeps ownership of nothing: the sim copies the
// value.
func (s *Sim) AddBody(b Body) {
	if _, exists := s.bodies[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	body := b
	s.bodies[b.ID] = &body
	s.Wake()
}

// RemoveBody discards a body and its simulation state.
func (s *Sim) RemoveBody(id string) {
	if _, ok := s.bodies[id]; !ok {
		return
	}
	delete(s.bodies, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.Wake()
}

// Retain removes every body whose id is not in keep, returning how many were
// discarded. Bodies that persist keep their position and velocity, which is
// what makes re-layout animate instead of snap.
func (s *Sim) Retain(keep map[string]bool) int {
	removed := 0
	for _, id := range slices.Clone(s.order) {
		if !keep[id] {
			s.RemoveBody(id)
			removed++
		}
	}
	return removed
}

// SetLinks replaces the link set. Links whose endpoints are unknown are
// ignored during force evaluation rather than rejected.
func (s *Sim) SetLinks(links []Link) {
	s.links = slices.Clone(links)
	s.parentOf = make(map[string]string, len(links))
	for _, l := range links {
		s.parentOf[l.ChildID] = l.ParentID
	}
	s.Wake()
}

// Links returns a copy of the current link set.
func (s *Sim) Links() []Link { return slices.Clone(s.links) }

// SetTarget updates a body's planned target and orbit radius.
func (s *Sim) SetTarget(id string, target Vec, orbitRadius float64) {
	b, ok := s.bodies[id]
	if !ok {
		return
	}
	if b.Target != target || b.OrbitRadius != orbitRadius {
		b.Target = target
		b.OrbitRadius = orbitRadius
		s.Wake()
	}
}

// Pin fixes a body's position. Pinned bodies skip spring forces and are
// immovable in the collision pass, but still repel and displace neighbors.
func (s *Sim) Pin(id string, pos Vec) {
	b, ok := s.bodies[id]
	if !ok {
		return
	}
	b.Pinned = true
	b.Pos = pos
	b.Vel = Vec{}
	s.Wake()
}

// Unpin releases a pinned body at rest, letting the spring forces pull it
// back toward its target over the following ticks.
func (s *Sim) Unpin(id string) {
	b, ok := s.bodies[id]
	if !ok {
		return
	}
	b.Pinned = false
	b.Vel = Vec{}
	s.Wake()
}

// Energy returns the total kinetic energy after the last tick.
func (s *Sim) Energy() float64 { return s.energy }

// Settled reports whether the system's per-body kinetic energy has fallen
// below the settle threshold, meaning the host may stop scheduling ticks.
func (s *Sim) Settled() bool { return s.settled }

// Wake marks the sim as unsettled so the tick loop resumes.
func (s *Sim) Wake() { s.settled = false }

// Step advances the simulation by dt (1 = one frame at the calibrated rate).
// Each non-pinned body integrates the summed force accelerations with
// velocity damping and a speed clamp, then a bounded number of collision
// separation passes resolves residual overlap. The tick exclusively owns the
// body set; no other phase may mutate it concurrently.
func (s *Sim) Step(dt float64) {
	if len(s.bodies) == 0 {
		s.energy = 0
		s.settled = true
		return
	}
	if dt <= 0 || math.IsNaN(dt) {
		return
	}

	// Sum forces into fresh accelerations before touching any position, so
	// every force sees the same pre-tick state.
	acc := make(map[string]Vec, len(s.bodies))
	for _, id := range s.order {
		b := s.bodies[id]
		if b.Pinned {
			continue
		}
		var a Vec
		for _, f := range s.forces {
			a = a.Add(f.Apply(b, s))
		}
		acc[id] = a
	}

	for _, id := range s.order {
		b := s.bodies[id]
		if b.Pinned {
			continue
		}
		b.Vel = b.Vel.Add(acc[id].Scale(dt)).Scale(s.cfg.Damping).Clamp(s.cfg.MaxSpeed)
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	}

	s.separate()

	// Energy is measured after separation: velocity pushed into a contact is
	// cancelled there, so bodies resting against each other count as calm
	// even while their springs keep leaning on the contact.
	energy := 0.0
	for _, id := range s.order {
		energy += s.bodies[id].Vel.LenSq()
	}
	s.energy = energy
	s.settled = energy/float64(len(s.bodies)) < s.cfg.SettleThreshold
}

// separate runs the positional collision pass: pairs closer than the sum of
// their radii plus padding are pushed apart along their separation axis.
// Pinned bodies hold their ground; the other body absorbs the full shift.
func (s *Sim) separate() {
	for iter := 0; iter < s.cfg.CollisionIterations; iter++ {
		moved := false
		for i := 0; i < len(s.order); i++ {
			a := s.bodies[s.order[i]]
			for j := i + 1; j < len(s.order); j++ {
				b := s.bodies[s.order[j]]
				if a.Pinned && b.Pinned {
					continue
				}
				minDist := a.Radius + b.Radius + s.cfg.CollisionPadding
				delta := b.Pos.Sub(a.Pos)
				dist := delta.Len()
				if dist >= minDist {
					continue
				}

				dir := delta.Norm()
				if dist < s.cfg.Epsilon {
					dist = s.cfg.Epsilon
					dir = s.tieBreakDir()
				}
				shift := (minDist - dist) / 2

				switch {
				case a.Pinned:
					b.Pos = b.Pos.Add(dir.Scale(2 * shift))
				case b.Pinned:
					a.Pos = a.Pos.Sub(dir.Scale(2 * shift))
				default:
					a.Pos = a.Pos.Sub(dir.Scale(shift))
					b.Pos = b.Pos.Add(dir.Scale(shift))
				}
				cancelContactVelocity(a, dir)
				cancelContactVelocity(b, dir.Scale(-1))
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}

// cancelContactVelocity strips the velocity component pushing a body into a
// resolved contact (into is the unit direction toward the other body).
// Without this, springs leaning on a contact keep the system jittering and
// it never settles.
func cancelContactVelocity(b *Body, into Vec) {
	if vn := b.Vel.Dot(into); vn > 0 {
		b.Vel = b.Vel.Sub(into.Scale(vn))
	}
}

// tieBreakDir returns a seeded random unit vector used to separate exactly
// coincident bodies without producing NaN.
func (s *Sim) tieBreakDir() Vec {
	return angleVec(s.rng.Float64() * 2 * math.Pi)
}

// SortedIDs returns all body ids sorted lexicographically. Useful for
// deterministic output independent of insertion order.
func (s *Sim) SortedIDs() []string {
	ids := slices.Clone(s.order)
	sort.Strings(ids)
	return ids
}
