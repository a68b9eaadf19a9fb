// Package cache provides pluggable byte caches for layout results.
//
// Three backends are included: [FileCache] for CLI usage, [RedisCache] for
// the server, and [NullCache] to disable caching. Keys are built through a
// [Keyer] so every consumer agrees on what identifies a snapshot, a settled
// frame, and a rendered artifact.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with TTL support.
//
// Implementations must treat a missing key as (nil, false, nil), not an
// error; errors are reserved for backend failures.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// FrameKeyOpts are the inputs that make two layouts of the same snapshot
// distinct: viewport, expansion state, and the physics/geometry config.
type FrameKeyOpts struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Expanded   []string `json:"expanded,omitempty"`
	ConfigHash string   `json:"config_hash,omitempty"`
}

// ArtifactKeyOpts identify a rendered output of a frame.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme,omitempty"`
}

// Keyer generates cache keys for the three cacheable stages.
type Keyer interface {
	// SnapshotKey generates a key for a normalized snapshot, addressed by
	// content hash.
	SnapshotKey(hash string) string

	// FrameKey generates a key for a settled layout of a snapshot.
	FrameKey(snapshotHash string, opts FrameKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact of a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for a normalized snapshot.
func (k *DefaultKeyer) SnapshotKey(hash string) string {
	return "snapshot:" + hash
}

// FrameKey generates a key for a settled layout. All options participate in
// the hash so a resize or a different expansion never aliases.
func (k *DefaultKeyer) FrameKey(snapshotHash string, opts FrameKeyOpts) string {
	return hashKey("frame", snapshotHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", frameHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
