package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestFenceRTree(t *testing.T) {
	rt := NewFenceRTree[int]()

	square := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	islands := orb.MultiPolygon{
		{{{20, 20}, {22, 20}, {22, 22}, {20, 22}, {20, 20}}},
		{{{30, 30}, {32, 30}, {32, 32}, {30, 32}, {30, 30}}},
	}

	if err := rt.InsertGeometry(square, 1); err != nil {
		t.Fatal(err)
	}
	if err := rt.InsertGeometry(islands, 2); err != nil {
		t.Fatal(err)
	}
	if err := rt.InsertGeometry(orb.Point{1, 1}, 3); err == nil {
		t.Error("expected points to be rejected")
	}
	if err := rt.InsertGeometry(orb.Polygon{}, 4); err == nil {
		t.Error("expected an empty polygon to be rejected")
	}

	if n := rt.Len(); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}

	if matches := rt.GetMatches(5, 5); len(matches) != 1 || matches[0] != 1 {
		t.Errorf("expected [1] at (5,5), got %v", matches)
	}
	if matches := rt.GetMatches(31, 31); len(matches) != 1 || matches[0] != 2 {
		t.Errorf("expected [2] at (31,31), got %v", matches)
	}
	// inside the multipolygon's bbox but in neither polygon
	if matches := rt.GetMatches(26, 26); len(matches) != 0 {
		t.Errorf("expected no matches at (26,26), got %v", matches)
	}

	rt.Reset()
	if n := rt.Len(); n != 0 {
		t.Errorf("expected empty tree after Reset, got %d", n)
	}
	if matches := rt.GetMatches(5, 5); len(matches) != 0 {
		t.Errorf("expected no matches after Reset, got %v", matches)
	}
}

func TestLabelPoint(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	if p := LabelPoint(square); !pointsEqual(p, orb.Point{2, 2}) {
		t.Errorf("expected the centroid of a square, got %v", p)
	}

	// U shape: the centroid sits in the notch.
	u := orb.Polygon{{{0, 0}, {6, 0}, {6, 6}, {4, 6}, {4, 2}, {2, 2}, {2, 6}, {0, 6}, {0, 0}}}
	p := LabelPoint(u)
	if !u.Bound().Contains(p) {
		t.Fatalf("label point %v is outside of the bounds", p)
	}
	if p[0] > 2 && p[0] < 4 && p[1] > 2 {
		t.Errorf("label point %v is in the notch", p)
	}

	if p := LabelPoint(orb.Polygon{}); p != (orb.Point{}) {
		t.Errorf("expected the zero point for an empty polygon, got %v", p)
	}
}

func TestGeometrySupported(t *testing.T) {
	tests := []struct {
		geometry orb.Geometry
		expected bool
	}{
		{orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, true},
		{orb.MultiPolygon{}, true},
		{orb.Point{1, 2}, false},
		{orb.LineString{{0, 0}, {1, 1}}, false},
		{orb.Collection{}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := GeometrySupported(tt.geometry); got != tt.expected {
			t.Errorf("%T: expected %t, got %t", tt.geometry, tt.expected, got)
		}
	}
}
