// Package physics integrates node positions over time under a combined
// force model: an orbit-restoring spring toward each node's planned target,
// mutual repulsion between all pairs, a distance-only spring along
// parent-child links, and an iterated collision separation pass.
//
// # Simulation Context
//
// All mutable state lives in an explicit [Sim] owned by the caller. There
// are no package-level singletons: concurrent Sim instances (for example in
// tests, or one per open map) never share state. A Sim is single-threaded
// by contract — one tick exclusively owns the body set, and callers
// interleave position overrides (drag pins) between ticks, never during one.
//
// # Force Model
//
// Forces are an explicit, ordered list of named pure functions
// (body, sim) → acceleration, summed once per body per tick and integrated
// with semi-implicit Euler under velocity damping. The list is fixed at
// construction, auditable via [Sim.ForceNames], and each force is testable
// in isolation. Pinned bodies (the root anchor, dragged nodes) skip the
// spring forces entirely but still take part in repulsion and collision so
// they push neighbors out of the way.
//
// # Settling
//
// Each tick tracks total kinetic energy. When the per-body average falls
// below the configured threshold the sim reports [Sim.Settled] and the host
// can stop scheduling ticks; any perturbation (body churn, retargeting,
// pinning) wakes it again.
//
// Degenerate geometry never produces NaN: coincident pairs are separated by
// an epsilon distance along a seeded tie-break direction.
package physics
