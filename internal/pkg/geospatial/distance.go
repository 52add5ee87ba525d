// Package geospatial holds great-circle helpers for WGS 84 coordinates.
package geospatial

import "math"

const (
	earthRadiusMeters  = 6371000.0
	metersPerDegreeLat = 111320.0
)

// DistanceMeters returns the haversine distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// BoxAround returns a rectangle enclosing the circle of radiusMeters around
// the point. It is a cheap prefilter; callers confirm with DistanceMeters.
// Near the poles or across the antimeridian the box spans all longitudes.
func BoxAround(lat, lng, radiusMeters float64) Box {
	latDelta := radiusMeters / metersPerDegreeLat
	b := Box{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	cos := math.Cos(toRad(lat))
	if cos < 1e-9 {
		return b
	}
	lngDelta := radiusMeters / (metersPerDegreeLat * cos)
	if lng-lngDelta >= -180 && lng+lngDelta <= 180 {
		b.MinLng = lng - lngDelta
		b.MaxLng = lng + lngDelta
	}
	return b
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
