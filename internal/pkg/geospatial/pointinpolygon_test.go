package geospatial

import "testing"

// Unit square with corners at (0,0) and (1,1), closed form.
var square = []Position{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}

func TestPointInRing_Inside(t *testing.T) {
	if !PointInRing(0.5, 0.5, square) {
		t.Error("expected center of square to be inside")
	}
}

func TestPointInRing_Outside(t *testing.T) {
	cases := []Position{
		{1.5, 0.5},
		{-0.5, 0.5},
		{0.5, 2.0},
		{0.5, -1.0},
	}
	for _, c := range cases {
		if PointInRing(c[0], c[1], square) {
			t.Errorf("expected (%v, %v) to be outside", c[0], c[1])
		}
	}
}

func TestPointInRing_OnEdge(t *testing.T) {
	if !PointInRing(0.5, 0, square) {
		t.Error("expected point on bottom edge to count as inside")
	}
	if !PointInRing(1, 1, square) {
		t.Error("expected corner to count as inside")
	}
}

func TestPointInRing_OpenRing(t *testing.T) {
	open := []Position{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if !PointInRing(0.5, 0.5, open) {
		t.Error("expected center inside for unclosed ring")
	}
}

func TestPointInRing_Degenerate(t *testing.T) {
	if PointInRing(0.5, 0.5, []Position{{0, 0}, {1, 1}}) {
		t.Error("two-point ring cannot contain anything")
	}
	if PointInRing(0, 0, nil) {
		t.Error("empty ring cannot contain anything")
	}
}

func TestPointInRing_Concave(t *testing.T) {
	// L-shaped ring; the notch at the upper right is outside.
	ring := []Position{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}, {0, 0}}
	if !PointInRing(0.5, 1.5, ring) {
		t.Error("expected point in the vertical arm to be inside")
	}
	if PointInRing(1.5, 1.5, ring) {
		t.Error("expected point in the notch to be outside")
	}
}

func TestInBoundingBox(t *testing.T) {
	if !InBoundingBox(0.5, 0.5, square) {
		t.Error("center must be within bbox")
	}
	if InBoundingBox(3, 3, square) {
		t.Error("(3,3) must be outside bbox")
	}
}
