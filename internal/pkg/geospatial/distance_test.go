package geospatial

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want, tolerance        float64
	}{
		{"same point", 14.5995, 120.9842, 14.5995, 120.9842, 0, 0.001},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 10},
		{"manila to quezon city", 14.5995, 120.9842, 14.6760, 121.0437, 10646, 50},
		{"across the antimeridian", 0, 179.9, 0, -179.9, 22239, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters = %.1f, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestBoxAround(t *testing.T) {
	b := BoxAround(14.5995, 120.9842, 1000)
	if !b.Contains(14.5995, 120.9842) {
		t.Fatal("box must contain its center")
	}
	// A point 1 km north is on the edge; 2 km north is outside.
	if !b.Contains(14.5995+1000/metersPerDegreeLat, 120.9842) {
		t.Error("expected point at radius to be inside")
	}
	if b.Contains(14.5995+2000/metersPerDegreeLat, 120.9842) {
		t.Error("expected point beyond radius to be outside")
	}
}

func TestBoxAround_Edges(t *testing.T) {
	polar := BoxAround(89.9999, 10, 5000)
	if polar.MaxLat != 90 || polar.MinLng != -180 || polar.MaxLng != 180 {
		t.Errorf("expected a clamped full-longitude box near the pole, got %+v", polar)
	}

	dateline := BoxAround(0, 179.99, 5000)
	if !dateline.Contains(0, -179.99) {
		t.Error("expected the box to wrap across the antimeridian")
	}
}
