package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// BoundsOf returns the bounding box of the given markers.
// ok is false when markers is empty.
func BoundsOf(markers []Marker) (b Bounds, ok bool) {
	if len(markers) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: markers[0].Lat, MaxLat: markers[0].Lat,
		MinLng: markers[0].Lng, MaxLng: markers[0].Lng,
	}
	for _, m := range markers[1:] {
		b.MinLat = math.Min(b.MinLat, m.Lat)
		b.MaxLat = math.Max(b.MaxLat, m.Lat)
		b.MinLng = math.Min(b.MinLng, m.Lng)
		b.MaxLng = math.Max(b.MaxLng, m.Lng)
	}
	return b, true
}

// ValidateLatLng reports ErrRange when lat or lng is outside WGS 84 bounds
// and ErrParse when either is not a finite number.
func ValidateLatLng(lat, lng float64) error {
	if !isFinite(lat) || !isFinite(lng) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrParse)
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrRange, lat)
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrRange, lng)
	}
	return nil
}

// ParseCoordinates parses manually entered latitude/longitude text.
func ParseCoordinates(latText, lngText string) (GeoPoint, error) {
	lat, err := parseFinite(latText)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: latitude %q", ErrParse, latText)
	}
	lng, err := parseFinite(lngText)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: longitude %q", ErrParse, lngText)
	}
	if err := ValidateLatLng(lat, lng); err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{Lat: lat, Lng: lng}, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(v) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
