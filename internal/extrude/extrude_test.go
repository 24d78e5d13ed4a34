package extrude

import (
	gomath "math"
	"testing"

	"github.com/paulmach/orb"
)

func squareRing(size float64) orb.Ring {
	return orb.Ring{{0, 0}, {size, 0}, {size, size}, {0, size}}
}

func TestNormalizeWinding(t *testing.T) {
	s := Shape{
		Contour: squareRing(10), // counter-clockwise as written
		Holes: []orb.Ring{
			{{2, 2}, {2, 8}, {8, 8}, {8, 2}}, // clockwise as written
		},
	}
	s.Normalize()

	if a := SignedArea(s.Contour); a >= 0 {
		t.Errorf("contour signed area = %v, want negative (clockwise)", a)
	}
	if a := SignedArea(s.Holes[0]); a <= 0 {
		t.Errorf("hole signed area = %v, want positive (counter-clockwise)", a)
	}

	// Idempotent.
	before := append(orb.Ring{}, s.Contour...)
	s.Normalize()
	for i, p := range s.Contour {
		if p != before[i] {
			t.Fatalf("second Normalize changed contour at %d: %v != %v", i, p, before[i])
		}
	}
}

func TestNormalizeRemovesDegeneratePoints(t *testing.T) {
	s := Shape{Contour: orb.Ring{{0, 0}, {10, 0}, {10, 0}, {10, 10}, {0, 10}}}
	s.Normalize()
	if got := len(s.Contour); got != 4 {
		t.Fatalf("contour length = %d, want 4", got)
	}
}

func TestExtrudeSquare(t *testing.T) {
	b := Extrude([]Shape{{Contour: squareRing(10)}}, Options{Depth: 5, Steps: 1})

	if got := b.VertexCount(); got != 8 {
		t.Errorf("vertex count = %d, want 8", got)
	}
	if got := b.TriangleCount(); got != 12 {
		t.Errorf("triangle count = %d, want 12", got)
	}
	if vol := b.SignedVolume(); gomath.Abs(vol-500) > 1e-6 {
		t.Errorf("signed volume = %v, want 500", vol)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestExtrudeSteps(t *testing.T) {
	b := Extrude([]Shape{{Contour: squareRing(10)}}, Options{Depth: 5, Steps: 3})

	if got := b.VertexCount(); got != 16 {
		t.Errorf("vertex count = %d, want 16", got)
	}
	// 2 triangles per cap, 2 per edge per step.
	if got := b.TriangleCount(); got != 4+4*2*3 {
		t.Errorf("triangle count = %d, want 28", got)
	}
	if vol := b.SignedVolume(); gomath.Abs(vol-500) > 1e-6 {
		t.Errorf("signed volume = %v, want 500", vol)
	}
}

func TestExtrudeSkipBottomFace(t *testing.T) {
	b := Extrude([]Shape{{Contour: squareRing(10)}}, Options{Depth: 5, Steps: 1, SkipBottomFace: true})
	if got := b.TriangleCount(); got != 10 {
		t.Errorf("triangle count = %d, want 10", got)
	}
}

func TestExtrudeWithHole(t *testing.T) {
	s := Shape{
		Contour: squareRing(10),
		Holes:   []orb.Ring{{{2, 2}, {8, 2}, {8, 8}, {2, 8}}},
	}
	b := Extrude([]Shape{s}, Options{Depth: 5, Steps: 1})

	if got := b.VertexCount(); got != 16 {
		t.Errorf("vertex count = %d, want 16", got)
	}
	want := (100.0 - 36.0) * 5
	if vol := b.SignedVolume(); gomath.Abs(vol-want) > 1e-6 {
		t.Errorf("signed volume = %v, want %v", vol, want)
	}
}

func TestExtrudeMultipleShapes(t *testing.T) {
	a := Shape{Contour: squareRing(10)}
	c := Shape{Contour: orb.Ring{{20, 0}, {30, 0}, {30, 10}, {20, 10}}}
	b := Extrude([]Shape{a, c}, Options{Depth: 5, Steps: 1})

	if got := b.VertexCount(); got != 16 {
		t.Errorf("vertex count = %d, want 16", got)
	}
	if vol := b.SignedVolume(); gomath.Abs(vol-1000) > 1e-6 {
		t.Errorf("signed volume = %v, want 1000", vol)
	}
}

func TestExtrudeDegenerateContour(t *testing.T) {
	b := Extrude([]Shape{{Contour: orb.Ring{{0, 0}, {1, 1}}}}, Options{Depth: 5})
	if got := b.VertexCount(); got != 0 {
		t.Errorf("vertex count = %d, want 0 for a degenerate contour", got)
	}
}

func TestExtrudeUVsMatchFootprint(t *testing.T) {
	b := Extrude([]Shape{{Contour: squareRing(10)}}, Options{Depth: 5, Steps: 1})
	if len(b.UVs) != 2*b.VertexCount() {
		t.Fatalf("uv count = %d, want %d", len(b.UVs), 2*b.VertexCount())
	}
	for v := 0; v < b.VertexCount(); v++ {
		if b.UVs[2*v] != b.Positions[3*v] || b.UVs[2*v+1] != b.Positions[3*v+1] {
			t.Fatalf("vertex %d: uv (%v,%v) does not match position (%v,%v)",
				v, b.UVs[2*v], b.UVs[2*v+1], b.Positions[3*v], b.Positions[3*v+1])
		}
	}
}
