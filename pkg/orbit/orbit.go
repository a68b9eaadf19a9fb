// Package orbit plans target positions for visible nodes: every non-root
// node is assigned an orbit radius and angle relative to its parent's
// current position.
//
// The planner is deterministic and side-effect free. It walks the visible
// tree depth-first and, for each parent with k visible children, picks a
// ring radius that grows with depth and child density, then distributes the
// children's angles evenly around the full circle. Targets are recomputed on
// every planning pass against live parent positions, never cached, because
// the parent may have moved since the last pass.
//
// The integrator (pkg/physics) is what moves nodes toward these targets;
// the planner only says where they belong.
package orbit

import (
	"math"

	"github.com/davemaier/orbitmap/pkg/tree"
	"github.com/davemaier/orbitmap/pkg/view"
)

// Config holds the orbit geometry tuning parameters.
// Use [DefaultConfig] and override selectively.
type Config struct {
	// BaseRadius is the ring radius for a root's children.
	BaseRadius float64 `toml:"base_radius"`

	// DepthIncrement is added to the ring radius per depth level.
	DepthIncrement float64 `toml:"depth_increment"`

	// SlotPadding is the angular clearance between ring neighbors, in the
	// same units as node radii. Dense fan-outs are pushed outward until each
	// child has a full slot on the circumference.
	SlotPadding float64 `toml:"slot_padding"`

	// ExpandedBoost multiplies an expanded child's own orbit radius, pushing
	// open branches outward to make room for their rings.
	ExpandedBoost float64 `toml:"expanded_boost"`

	// AngleOffset is the default starting angle in radians. With π/2 a
	// single child of the root sits directly below its parent.
	AngleOffset float64 `toml:"angle_offset"`

	// MinNodeRadius and MaxNodeRadius bound the visual radius scale.
	MinNodeRadius float64 `toml:"min_node_radius"`
	MaxNodeRadius float64 `toml:"max_node_radius"`
}

// DefaultConfig returns the tuning used when no config file overrides it.
func DefaultConfig() Config {
	return Config{
		BaseRadius:     140,
		DepthIncrement: 50,
		SlotPadding:    12,
		ExpandedBoost:  1.3,
		AngleOffset:    math.Pi / 2,
		MinNodeRadius:  10,
		MaxNodeRadius:  34,
	}
}

// Placement is one node's planned orbital position.
type Placement struct {
	ID      string
	TargetX float64
	TargetY float64
	Radius  float64 // Distance to the parent's current position; 0 for roots
	Angle   float64 // Radians; meaningful only for non-roots
}

// PositionFunc reports a node's current position. The second return value
// is false for brand-new nodes that have no position yet; the planner then
// bases their children on the node's own planned target.
type PositionFunc func(id string) (x, y float64, ok bool)

// Planner computes placements for the visible set.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner with the given geometry config.
// Zero-valued fields fall back to [DefaultConfig].
func NewPlanner(cfg Config) *Planner {
	def := DefaultConfig()
	if cfg.BaseRadius <= 0 {
		cfg.BaseRadius = def.BaseRadius
	}
	if cfg.DepthIncrement <= 0 {
		cfg.DepthIncrement = def.DepthIncrement
	}
	if cfg.SlotPadding <= 0 {
		cfg.SlotPadding = def.SlotPadding
	}
	if cfg.ExpandedBoost <= 0 {
		cfg.ExpandedBoost = def.ExpandedBoost
	}
	if cfg.AngleOffset == 0 {
		cfg.AngleOffset = def.AngleOffset
	}
	if cfg.MinNodeRadius <= 0 {
		cfg.MinNodeRadius = def.MinNodeRadius
	}
	if cfg.MaxNodeRadius <= cfg.MinNodeRadius {
		cfg.MaxNodeRadius = cfg.MinNodeRadius + def.MaxNodeRadius - def.MinNodeRadius
	}
	return &Planner{cfg: cfg}
}

// Config returns the planner's effective geometry config.
func (p *Planner) Config() Config { return p.cfg }

// Plan computes a placement for every visible node. The root is anchored at
// (anchorX, anchorY); every other node's target is its parent's current
// position plus radius·(cos θ, sin θ). Recursion is depth-first so a child's
// own children are planned against the child's position in the same pass.
func (p *Planner) Plan(t *tree.Tree, e *view.Expansion, pos PositionFunc, anchorX, anchorY float64) map[string]Placement {
	out := make(map[string]Placement)
	if t == nil || t.Len() == 0 {
		return out
	}
	if pos == nil {
		pos = func(string) (float64, float64, bool) { return 0, 0, false }
	}

	maxSize := p.maxRootSize(t)

	for i, rootID := range t.Roots() {
		root, ok := t.Node(rootID)
		if !ok {
			continue
		}
		// Secondary roots (possible only in degenerate input) are staggered
		// so pinned anchors never coincide exactly.
		ax := anchorX + float64(i)*p.cfg.BaseRadius
		out[root.ID] = Placement{ID: root.ID, TargetX: ax, TargetY: anchorY}
		p.planChildren(t, e, pos, root, ax, anchorY, p.cfg.AngleOffset, maxSize, out)
	}
	return out
}

// planChildren assigns targets to the visible children of parent, whose
// current (or freshly planned) position is (px, py). inbound is the angle on
// which the parent itself was placed; a single child continues that spoke.
func (p *Planner) planChildren(t *tree.Tree, e *view.Expansion, pos PositionFunc, parent *tree.Node, px, py, inbound float64, maxSize float64, out map[string]Placement) {
	if !e.IsExpanded(parent.ID) {
		return
	}
	children := t.Children(parent.ID)
	k := len(children)
	if k == 0 {
		return
	}

	ring := p.ringRadius(parent.Depth, children, maxSize)

	for i, c := range children {
		angle := p.childAngle(parent, inbound, i, k)
		r := ring
		if e.IsExpanded(c.ID) && len(c.Children) > 0 {
			r *= p.cfg.ExpandedBoost
		}

		tx := px + r*math.Cos(angle)
		ty := py + r*math.Sin(angle)
		out[c.ID] = Placement{ID: c.ID, TargetX: tx, TargetY: ty, Radius: r, Angle: angle}

		// Children orbit the child's live position when it has one; a
		// brand-new child has only its planned target to offer.
		cx, cy, ok := pos(c.ID)
		if !ok {
			cx, cy = tx, ty
		}
		p.planChildren(t, e, pos, c, cx, cy, angle, maxSize, out)
	}
}

// ringRadius picks the orbit radius for a parent's children: a base that
// grows with depth, pushed outward until the circumference offers every
// child a collision-free slot.
func (p *Planner) ringRadius(parentDepth int, children []*tree.Node, maxSize float64) float64 {
	r := p.cfg.BaseRadius + float64(parentDepth)*p.cfg.DepthIncrement

	slot := 0.0
	for _, c := range children {
		if d := 2*p.NodeRadiusScaled(c, maxSize) + p.cfg.SlotPadding; d > slot {
			slot = d
		}
	}
	if need := float64(len(children)) * slot / (2 * math.Pi); need > r {
		r = need
	}
	return r
}

// childAngle distributes k children evenly over the full circle. A single
// child of a non-root parent continues the parent's inbound spoke outward
// instead of taking the default offset.
func (p *Planner) childAngle(parent *tree.Node, inbound float64, i, k int) float64 {
	if k == 1 {
		if parent.IsRoot() {
			return p.cfg.AngleOffset
		}
		return inbound
	}
	start := p.cfg.AngleOffset
	if !parent.IsRoot() {
		start = inbound
	}
	return start + 2*math.Pi*float64(i)/float64(k)
}

// NodeRadius returns the node's visual radius, scaled by size relative to
// the tree's largest component. Used for rendering and collision separation.
func (p *Planner) NodeRadius(t *tree.Tree, n *tree.Node) float64 {
	return p.NodeRadiusScaled(n, p.maxRootSize(t))
}

// NodeRadiusScaled is [Planner.NodeRadius] with the size ceiling precomputed.
func (p *Planner) NodeRadiusScaled(n *tree.Node, maxSize float64) float64 {
	if maxSize <= 0 || n.Size <= 0 {
		return p.cfg.MinNodeRadius
	}
	// Log scale keeps tiny files visible next to huge folders.
	frac := math.Log1p(n.Size) / math.Log1p(maxSize)
	if frac > 1 {
		frac = 1
	}
	return p.cfg.MinNodeRadius + frac*(p.cfg.MaxNodeRadius-p.cfg.MinNodeRadius)
}

func (p *Planner) maxRootSize(t *tree.Tree) float64 {
	max := 0.0
	for _, id := range t.Roots() {
		if n, ok := t.Node(id); ok && n.Size > max {
			max = n.Size
		}
	}
	return max
}
