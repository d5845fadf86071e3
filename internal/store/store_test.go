package store

import (
	"testing"
	"time"

	"github.com/lgmendez/diasync/internal/diagram"
)

func mkDiagram(id, name string, updated time.Time) diagram.Diagram {
	return diagram.Diagram{
		ID:        id,
		Name:      name,
		Owner:     diagram.Participant{ID: "u1"},
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
	}
}

func TestUpsertInsertsAndReplaces(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if !s.Upsert(mkDiagram("d1", "first", t0)) {
		t.Fatal("insert reported no change")
	}
	if !s.Upsert(mkDiagram("d1", "second", t0.Add(time.Minute))) {
		t.Fatal("newer upsert reported no change")
	}

	got, ok := s.Get("d1")
	if !ok {
		t.Fatal("d1 missing")
	}
	if got.Name != "second" {
		t.Errorf("got name %q, want %q", got.Name, "second")
	}
	if s.Len() != 1 {
		t.Errorf("got %d items, want 1 (no duplicate insert)", s.Len())
	}
}

func TestUpsertMonotonicSequenceKeepsLast(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Upsert(mkDiagram("d1", "v", t0.Add(time.Duration(i)*time.Minute)))
	}

	got, _ := s.Get("d1")
	want := t0.Add(4 * time.Minute)
	if !got.UpdatedAt.Equal(want) {
		t.Errorf("got UpdatedAt %v, want %v", got.UpdatedAt, want)
	}
}

func TestUpsertStaleIsNoOp(t *testing.T) {
	s := New()
	fresh := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stale := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	s.Upsert(mkDiagram("d1", "current", fresh))
	if s.Upsert(mkDiagram("d1", "old", stale)) {
		t.Error("stale upsert reported a change")
	}

	got, _ := s.Get("d1")
	if got.Name != "current" {
		t.Errorf("got name %q, stale push must not win", got.Name)
	}
}

func TestUpsertEqualTimestampReplaces(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(mkDiagram("d1", "first", t0))
	s.Upsert(mkDiagram("d1", "second", t0))

	got, _ := s.Get("d1")
	if got.Name != "second" {
		t.Errorf("got %q, equal timestamp should not be treated as stale", got.Name)
	}
}

func TestRemoveThenUpsertReinserts(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(mkDiagram("d1", "first", t0))
	s.Remove("d1")

	if s.Len() != 0 {
		t.Fatalf("got %d items after remove, want 0", s.Len())
	}

	// No tombstoning: an even older copy may come back.
	if !s.Upsert(mkDiagram("d1", "again", t0.Add(-time.Hour))) {
		t.Fatal("re-insert after remove rejected")
	}
	if _, ok := s.Get("d1"); !ok {
		t.Fatal("d1 missing after re-insert")
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Upsert(mkDiagram("d1", "first", t0))

	if !s.SetSelected("d1") {
		t.Fatal("SetSelected rejected a present id")
	}
	s.Remove("d1")

	if _, ok := s.Selected(); ok {
		t.Error("selection survived removal of the selected diagram")
	}
}

func TestSetSelectedUnknownIDRejected(t *testing.T) {
	s := New()
	if s.SetSelected("missing") {
		t.Error("SetSelected accepted an absent id")
	}
}

func TestSetAllReplacesAndClearsStaleSelection(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Upsert(mkDiagram("d1", "first", t0))
	s.SetSelected("d1")

	s.SetAll([]diagram.Diagram{mkDiagram("d2", "second", t0)})

	if _, ok := s.Get("d1"); ok {
		t.Error("d1 survived SetAll")
	}
	if _, ok := s.Selected(); ok {
		t.Error("stale selection survived SetAll")
	}
	if s.Len() != 1 {
		t.Errorf("got %d items, want 1", s.Len())
	}
}

func TestListOrderIsStable(t *testing.T) {
	s := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Upsert(mkDiagram("d2", "beta", t0))
	s.Upsert(mkDiagram("d1", "alpha", t0))
	s.Upsert(mkDiagram("d3", "alpha", t0))

	got := s.List()
	wantIDs := []string{"d1", "d3", "d2"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: got %q, want %q (full: %+v)", i, got[i].ID, id, got)
		}
	}
}

func TestLoadingAndError(t *testing.T) {
	s := New()

	s.SetLoading(true)
	if !s.Loading() {
		t.Error("loading flag not set")
	}
	s.SetLoading(false)
	if s.Loading() {
		t.Error("loading flag not cleared")
	}

	s.SetError("boom")
	if s.Err() != "boom" {
		t.Errorf("got error %q, want %q", s.Err(), "boom")
	}
	s.SetError("")
	if s.Err() != "" {
		t.Error("error not cleared")
	}
}

func TestSubscribeNotifiesOnTransitions(t *testing.T) {
	s := New()
	var calls int
	unsub := s.Subscribe(func() { calls++ })

	s.Upsert(mkDiagram("d1", "first", time.Now()))
	s.SetLoading(true)
	if calls != 2 {
		t.Errorf("got %d notifications, want 2", calls)
	}

	unsub()
	s.SetLoading(false)
	if calls != 2 {
		t.Errorf("got %d notifications after unsubscribe, want 2", calls)
	}
}
