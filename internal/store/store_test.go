package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "huddle.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMarkSeenRoundtrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.MarkSeen("c-1", []string{"a", "b"}); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	// Re-marking is a no-op, not an error.
	if err := s.MarkSeen("c-1", []string{"b", "c"}); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	ids, err := s.SeenIDs("c-1")
	if err != nil {
		t.Fatalf("SeenIDs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, ok := ids[id]; !ok {
			t.Errorf("missing id %s", id)
		}
	}

	other, err := s.SeenIDs("c-2")
	if err != nil {
		t.Fatalf("SeenIDs failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ids must be scoped per channel, got %v", other)
	}
}

func TestMarkSeenEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.MarkSeen("c-1", nil); err != nil {
		t.Fatalf("MarkSeen(nil) failed: %v", err)
	}
}

func TestReadToNeverMovesBackwards(t *testing.T) {
	s := openTestStore(t)
	later := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	if err := s.SetReadTo("c-1", later); err != nil {
		t.Fatalf("SetReadTo failed: %v", err)
	}
	if err := s.SetReadTo("c-1", earlier); err != nil {
		t.Fatalf("SetReadTo failed: %v", err)
	}

	got, err := s.ReadTo("c-1")
	if err != nil {
		t.Fatalf("ReadTo failed: %v", err)
	}
	if !got.Equal(later) {
		t.Errorf("watermark moved backwards: got %v, want %v", got, later)
	}
}

func TestReadToUnsetIsZero(t *testing.T) {
	s := openTestStore(t)
	got, err := s.ReadTo("missing")
	if err != nil {
		t.Fatalf("ReadTo failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	if err := s.MarkSeen("c-1", []string{"recent"}); err != nil {
		t.Fatal(err)
	}

	// Nothing is older than an hour yet.
	if err := s.Prune(time.Hour); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	ids, err := s.SeenIDs("c-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("recent ids must survive pruning, got %v", ids)
	}
}
