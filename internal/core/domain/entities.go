package domain

import (
	"fmt"
	"time"
)

// MarkerTitlePrefix is the label prefix of user-placed obstacle markers.
const MarkerTitlePrefix = "Obstacle "

// Marker is a user-placed point annotation on the field map.
type Marker struct {
	ID    string  `json:"id,omitempty"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Title string  `json:"title"`
}

// Key identifies the marker on the render surface. Documents written before
// markers carried an id fall back to the title.
func (m Marker) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return "title:" + m.Title
}

// Validate checks the coordinate invariants of a marker.
func (m Marker) Validate() error {
	return ValidateLatLng(m.Lat, m.Lng)
}

// MarkerTitle returns the generated label for the n-th marker (1-based).
func MarkerTitle(n int) string {
	return fmt.Sprintf("%s%d", MarkerTitlePrefix, n)
}

// MarkerDocument is the durable per-user copy of a marker set.
type MarkerDocument struct {
	UserID    string    `json:"-"`
	Markers   []Marker  `json:"markers"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NearbyMarker is a marker with its distance from a query point.
type NearbyMarker struct {
	Marker         Marker  `json:"marker"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// MarkersSavedEvent is published after a marker document was overwritten.
type MarkersSavedEvent struct {
	UserID    string    `json:"user_id"`
	Count     int       `json:"count"`
	SessionID string    `json:"session_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
