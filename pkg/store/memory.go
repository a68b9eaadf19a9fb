package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/davemaier/orbitmap/pkg/snapshot"
)

// MemoryStore is an in-memory map store for development and testing.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*MapDoc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*MapDoc)}
}

func (s *MemoryStore) Create(ctx context.Context, name string, snap snapshot.Snapshot) (*MapDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	doc := &MapDoc{
		ID:        newID(),
		Name:      name,
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.docs[doc.ID] = doc

	out := *doc
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*MapDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *doc
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]MapSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MapSummary, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, MapSummary{ID: doc.ID, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateFrame(ctx context.Context, id string, frame *snapshot.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Frame = frame
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
