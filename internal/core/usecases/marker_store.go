package usecases

import (
	"github.com/google/uuid"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// MarkerStore holds the ordered marker sequence of one mapping session.
// It is not safe for concurrent use; the owning session is its only mutator.
type MarkerStore struct {
	markers  []domain.Marker
	onChange func([]domain.Marker)
	newID    func() string
}

// NewMarkerStore creates an empty store. onChange, if non-nil, receives a
// copy of the sequence after every mutation.
func NewMarkerStore(onChange func([]domain.Marker)) *MarkerStore {
	return &MarkerStore{
		onChange: onChange,
		newID:    uuid.NewString,
	}
}

// Add appends a marker titled after its 1-based position.
func (s *MarkerStore) Add(lat, lng float64) []domain.Marker {
	s.markers = append(s.markers, domain.Marker{
		ID:    s.newID(),
		Lat:   lat,
		Lng:   lng,
		Title: domain.MarkerTitle(len(s.markers) + 1),
	})
	return s.changed()
}

// ReplaceAll swaps the whole sequence, keeping the received order.
func (s *MarkerStore) ReplaceAll(markers []domain.Marker) []domain.Marker {
	s.markers = append(make([]domain.Marker, 0, len(markers)), markers...)
	return s.changed()
}

// Clear empties the sequence.
func (s *MarkerStore) Clear() []domain.Marker {
	s.markers = nil
	return s.changed()
}

// Markers returns a copy of the current sequence. Never nil.
func (s *MarkerStore) Markers() []domain.Marker {
	return append(make([]domain.Marker, 0, len(s.markers)), s.markers...)
}

// Len returns the number of markers.
func (s *MarkerStore) Len() int {
	return len(s.markers)
}

func (s *MarkerStore) changed() []domain.Marker {
	snapshot := s.Markers()
	if s.onChange != nil {
		s.onChange(s.Markers())
	}
	return snapshot
}
