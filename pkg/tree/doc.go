// Package tree normalizes raw folder hierarchies into flat node sets with
// stable identity, rolled-up sizes, and deterministic child ordering.
//
// The normalizer is the first stage of the layout pipeline. It converts an
// external snapshot (a nested tree of folder-like items, or a flat list of
// entries with parent references) into a [Tree]: a flat set of [Node] values
// indexed by id, each carrying its depth, parent linkage, and an ordered
// child list.
//
// # Normalization Rules
//
//   - Only items whose Selected flag is set are visited. Unselected subtrees
//     are pruned entirely and do not exist for layout purposes.
//   - A node's size is max(own reported size, sum of visited children's
//     sizes), so a folder never appears smaller than its visible contents.
//   - Children are ordered by descending size, tie-broken by name, so layout
//     is reproducible for identical input.
//   - When the snapshot has zero or multiple selected top-level items, a
//     synthetic root ([SyntheticRootID]) is inserted so every tree has
//     exactly one entry point per connected component.
//
// # Identity
//
// Node identity must be stable across re-normalization: the same logical
// folder keeps the same id when the snapshot is reloaded, which is what lets
// the simulation retain positions instead of snapping. An explicit item id is
// used verbatim; items without one get a deterministic hash of
// (parent identity, name). Identity is never random.
//
// # Fault Tolerance
//
// Normalize never fails. Cyclic references are broken deterministically by
// dropping the revisiting edge, dangling parent references turn the child
// into an orphan root, and a nil or empty snapshot produces an empty tree.
package tree
