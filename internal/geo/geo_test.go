package geo

import (
	"math"
	"testing"
)

func TestDistanceKnownPairs(t *testing.T) {
	paris := Coordinate{Latitude: 48.8566, Longitude: 2.3522}
	london := Coordinate{Latitude: 51.5074, Longitude: -0.1278}

	// Great-circle Paris–London is roughly 344 km.
	d := Distance(paris, london)
	if math.Abs(d-344000) > 5000 {
		t.Errorf("Paris-London distance = %.0f m, want ~344000", d)
	}

	if Distance(paris, paris) != 0 {
		t.Error("distance to self must be zero")
	}

	// Symmetry.
	if math.Abs(Distance(paris, london)-Distance(london, paris)) > 1e-6 {
		t.Error("distance must be symmetric")
	}
}

func TestDistanceSmallOffsets(t *testing.T) {
	a := Coordinate{Latitude: 48.8566, Longitude: 2.3522}
	// ~0.001° latitude is ~111 m.
	b := Coordinate{Latitude: 48.8576, Longitude: 2.3522}

	d := Distance(a, b)
	if d < 100 || d > 125 {
		t.Errorf("0.001 degree latitude offset = %.1f m, want ~111", d)
	}
}

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		coord Coordinate
		want  bool
	}{
		{Coordinate{0, 0}, true},
		{Coordinate{90, 180}, true},
		{Coordinate{-90, -180}, true},
		{Coordinate{90.1, 0}, false},
		{Coordinate{0, 180.1}, false},
	}
	for _, tc := range cases {
		if got := tc.coord.Valid(); got != tc.want {
			t.Errorf("Valid(%v) = %v, want %v", tc.coord, got, tc.want)
		}
	}
}

func TestCoordinateKeys(t *testing.T) {
	a := Coordinate{Latitude: 48.856613, Longitude: 2.352222}
	b := Coordinate{Latitude: 48.856613, Longitude: 2.352222}
	c := Coordinate{Latitude: 48.856614, Longitude: 2.352222}

	if a.Key() != b.Key() {
		t.Error("identical coordinates must share an exact key")
	}
	if a.Key() == c.Key() {
		t.Error("exact keys must distinguish nearly identical coordinates")
	}
	// The rounded key deliberately collapses sub-11m differences.
	if a.RoundedKey() != c.RoundedKey() {
		t.Error("rounded keys should collapse tiny offsets")
	}
}
