package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_SamePoint_Zero(t *testing.T) {
	t.Parallel()

	if d := DistanceKm(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	t.Parallel()

	// Bangalore to Mysore, roughly 128 km great-circle.
	d := DistanceKm(12.9716, 77.5946, 12.2958, 76.6394)
	if d < 125 || d > 132 {
		t.Errorf("expected ~128 km, got %f", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	t.Parallel()

	a := DistanceKm(24.33, 92.01, 24.37, 92.17)
	b := DistanceKm(24.37, 92.17, 24.33, 92.01)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestDistanceKm_OneDegreeLatitude(t *testing.T) {
	t.Parallel()

	// One degree of latitude is ~111 km everywhere.
	d := DistanceKm(10, 50, 11, 50)
	if d < 110 || d > 112 {
		t.Errorf("expected ~111 km, got %f", d)
	}
}
