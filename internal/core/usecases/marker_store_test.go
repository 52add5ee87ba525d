package usecases_test

import (
	"testing"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
)

func TestMarkerStore_AddTitlesByPosition(t *testing.T) {
	var calls int
	store := usecases.NewMarkerStore(func([]domain.Marker) { calls++ })

	points := [][2]float64{{14.5995, 120.9842}, {0, 0}, {0, 0}, {-90, 180}}
	for i, p := range points {
		before := store.Len()
		got := store.Add(p[0], p[1])
		if len(got) != before+1 {
			t.Fatalf("add %d: expected length %d, got %d", i, before+1, len(got))
		}
		last := got[len(got)-1]
		if last.Title != domain.MarkerTitle(before+1) {
			t.Errorf("add %d: expected title %q, got %q", i, domain.MarkerTitle(before+1), last.Title)
		}
		if last.Lat != p[0] || last.Lng != p[1] {
			t.Errorf("add %d: coordinates not kept: %+v", i, last)
		}
		if last.ID == "" {
			t.Errorf("add %d: expected generated id", i)
		}
	}
	if calls != len(points) {
		t.Errorf("expected %d change notifications, got %d", len(points), calls)
	}
}

func TestMarkerStore_DuplicateCoordinatesGetDistinctIDs(t *testing.T) {
	store := usecases.NewMarkerStore(nil)
	store.Add(1, 1)
	got := store.Add(1, 1)

	if got[0].ID == got[1].ID {
		t.Fatal("expected distinct ids for duplicate coordinates")
	}
	if got[0].Title != "Obstacle 1" || got[1].Title != "Obstacle 2" {
		t.Errorf("unexpected titles: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestMarkerStore_ReplaceAllKeepsOrder(t *testing.T) {
	var last []domain.Marker
	store := usecases.NewMarkerStore(func(m []domain.Marker) { last = m })

	in := []domain.Marker{
		{ID: "c", Lat: 3, Lng: 3, Title: "Obstacle 3"},
		{ID: "a", Lat: 1, Lng: 1, Title: "Obstacle 1"},
	}
	store.ReplaceAll(in)
	in[0].Title = "mutated"

	got := store.Markers()
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Title != "Obstacle 3" {
		t.Error("store must not alias the caller's slice")
	}
	if len(last) != 2 {
		t.Errorf("listener saw %d markers, want 2", len(last))
	}

	// Titles continue from the current length, not from the highest title.
	added := store.Add(5, 5)
	if added[2].Title != "Obstacle 3" {
		t.Errorf("expected Obstacle 3, got %q", added[2].Title)
	}
}

func TestMarkerStore_Clear(t *testing.T) {
	var notified bool
	store := usecases.NewMarkerStore(func(m []domain.Marker) {
		notified = len(m) == 0
	})
	store.Add(1, 2)
	store.Add(3, 4)
	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
	if got := store.Markers(); got == nil {
		t.Error("Markers must never return nil")
	}
	if !notified {
		t.Error("expected listener to see the empty sequence")
	}
}
