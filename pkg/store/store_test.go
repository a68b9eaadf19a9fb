package store

import (
	"context"
	"testing"
	"time"

	"github.com/davemaier/orbitmap/pkg/snapshot"
)

func testSnapshot(name string) snapshot.Snapshot {
	return snapshot.Snapshot{
		Name:  name,
		Items: []snapshot.Item{{Name: name, Size: 10}},
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	doc, err := s.Create(ctx, "home", testSnapshot("home"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Create assigned no id")
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("Create assigned no timestamps")
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "home" || len(got.Snapshot.Items) != 1 {
		t.Errorf("Get = %+v, want stored doc", got)
	}

	if err := s.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, doc.ID); err != ErrNotFound {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, doc.ID); err != ErrNotFound {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateFrame(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	doc, _ := s.Create(ctx, "home", testSnapshot("home"))
	created := doc.UpdatedAt

	time.Sleep(time.Millisecond)
	frame := &snapshot.Frame{Width: 800, Height: 600, Settled: true}
	if err := s.UpdateFrame(ctx, doc.ID, frame); err != nil {
		t.Fatalf("UpdateFrame error: %v", err)
	}

	got, _ := s.Get(ctx, doc.ID)
	if got.Frame == nil || got.Frame.Width != 800 {
		t.Errorf("frame not stored: %+v", got.Frame)
	}
	if !got.UpdatedAt.After(created) {
		t.Error("UpdateFrame did not bump UpdatedAt")
	}

	if err := s.UpdateFrame(ctx, "missing", frame); err != ErrNotFound {
		t.Errorf("UpdateFrame(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	a, _ := s.Create(ctx, "first", testSnapshot("first"))
	time.Sleep(time.Millisecond)
	b, _ := s.Create(ctx, "second", testSnapshot("second"))

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("List not ordered by recency: %v, %v", list[0].Name, list[1].Name)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	doc, _ := s.Create(ctx, "home", testSnapshot("home"))
	doc.Name = "mutated"

	got, _ := s.Get(ctx, doc.ID)
	if got.Name != "home" {
		t.Error("mutating a returned doc leaked into the store")
	}
}
