// Package store persists saved maps: a named snapshot plus, optionally,
// its last settled frame.
//
// Two backends are provided:
//   - memory: in-memory storage for development, testing, and single-shot
//     CLI runs
//   - mongo: MongoDB-backed storage for the server
//
// Both implement [Store]. Documents are identified by server-assigned
// UUIDs; callers never pick their own ids.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// ErrNotFound is returned when a requested map does not exist.
var ErrNotFound = errors.New("not found")

// MapDoc is one saved map.
type MapDoc struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Snapshot  snapshot.Snapshot `json:"snapshot" bson:"snapshot"`
	Frame     *snapshot.Frame   `json:"frame,omitempty" bson:"frame,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// MapSummary is the listing view of a saved map, without the payload.
type MapSummary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for saved-map storage backends.
type Store interface {
	// Create stores a new map and returns it with id and timestamps set.
	Create(ctx context.Context, name string, snap snapshot.Snapshot) (*MapDoc, error)

	// Get retrieves a map by id. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*MapDoc, error)

	// List returns summaries of all saved maps, most recently updated
	// first.
	List(ctx context.Context) ([]MapSummary, error)

	// UpdateFrame attaches a settled frame to an existing map.
	UpdateFrame(ctx context.Context, id string, frame *snapshot.Frame) error

	// Delete removes a map. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// newID generates a document id. UUIDs keep ids opaque and unguessable
// across backends.
func newID() string {
	return uuid.NewString()
}
