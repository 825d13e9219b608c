package geo

import (
	"math"
	"testing"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

func TestPlanarMeters(t *testing.T) {
	a := model.Location{Lat: 48.8584, Lng: 2.2945}
	b := model.Location{Lat: 48.8606, Lng: 2.3376}
	got := PlanarMeters(a, b)
	want := math.Sqrt(0.0022*0.0022+0.0431*0.0431) * 111_000
	if math.Abs(got-want) > 0.5 {
		t.Fatalf("PlanarMeters: got %f want %f", got, want)
	}
	if PlanarMeters(a, a) != 0 {
		t.Fatalf("PlanarMeters of identical points: got %f", PlanarMeters(a, a))
	}
	if PlanarMeters(a, b) != PlanarMeters(b, a) {
		t.Fatal("PlanarMeters not symmetric")
	}
}

func TestWalkingConversions(t *testing.T) {
	if got := WalkingMinutes(834); got != 10 {
		t.Fatalf("WalkingMinutes(834): got %d want 10", got)
	}
	if got := WalkingMinutes(0); got != 0 {
		t.Fatalf("WalkingMinutes(0): got %d want 0", got)
	}
	if got := WalkingDistanceM(15); math.Abs(got-1251) > 0.001 {
		t.Fatalf("WalkingDistanceM(15): got %f want 1251", got)
	}
}

func TestPairKeyRounding(t *testing.T) {
	a := model.Location{Lat: 48.85840000001, Lng: 2.2945}
	b := model.Location{Lat: 48.8584, Lng: 2.2945}
	dest := model.Location{Lat: 48.8606, Lng: 2.3376}
	if PairKey(a, dest) != PairKey(b, dest) {
		t.Fatal("PairKey should collapse sub-precision differences")
	}
	if PairKey(a, dest) == PairKey(dest, a) {
		t.Fatal("PairKey must stay directional")
	}
}

func TestCoordKeyPrecision(t *testing.T) {
	a := model.Location{Lat: 48.12345678, Lng: 2.1}
	b := model.Location{Lat: 48.12345681, Lng: 2.1}
	if CoordKey(a) != CoordKey(b) {
		t.Fatal("CoordKey should round to 7 decimals")
	}
	c := model.Location{Lat: 48.1234572, Lng: 2.1}
	if CoordKey(a) == CoordKey(c) {
		t.Fatal("CoordKey collapsed distinct coordinates")
	}
}

func TestBoundAndCentroid(t *testing.T) {
	points := []model.Point{
		{Location: model.Location{Lat: 48.0, Lng: 2.0}},
		{Location: model.Location{Lat: 48.1, Lng: 2.3}},
		{Location: model.Location{Lat: 48.05, Lng: 2.1}},
	}
	b := BoundOf(points)
	if b.MinLat != 48.0 || b.MaxLat != 48.1 || b.MinLng != 2.0 || b.MaxLng != 2.3 {
		t.Fatalf("BoundOf: got %+v", b)
	}
	width, height := b.WidthHeightM()
	if width <= 0 || height <= 0 {
		t.Fatalf("WidthHeightM: got %f x %f", width, height)
	}
	// 0.3° of longitude at ~48° should still be wider than 0.1° of latitude.
	if width < height {
		t.Fatalf("expected elongated box, got %f x %f", width, height)
	}
	c := Centroid(points)
	if math.Abs(c.Lat-48.05) > 1e-9 || math.Abs(c.Lng-2.1333333333) > 1e-6 {
		t.Fatalf("Centroid: got %+v", c)
	}
}
