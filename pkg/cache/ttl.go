package cache

import "time"

// Default TTLs per cached stage. Snapshots are content-addressed and never
// go stale; frames and artifacts are kept shorter so config changes roll
// through within a day.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLFrame    = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
