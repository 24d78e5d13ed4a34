package elevation

import (
	gomath "math"
	"testing"
)

func TestSmoothPreservesFlatSurface(t *testing.T) {
	g := NewGrid(10, 10, 42)
	s := Smooth(g)
	if s.W != g.W || s.H != g.H {
		t.Fatalf("smoothed size = %dx%d, want %dx%d", s.W, s.H, g.W, g.H)
	}
	for i, v := range s.Cells {
		if gomath.Abs(v-42) > 1e-9 {
			t.Fatalf("cell %d = %v, want 42", i, v)
		}
	}
}

func TestSmoothFlattensSpike(t *testing.T) {
	g := NewGrid(9, 9, 0)
	g.Set(4, 4, 1000)

	s := Smooth(g)
	if got := s.At(4, 4); got >= 1000 || got < 0 {
		t.Errorf("spike after smoothing = %v, want within [0, 1000)", got)
	}
	if got := s.At(4, 4); got > 200 {
		t.Errorf("spike after smoothing = %v, expected heavy attenuation", got)
	}

	// The input grid stays untouched.
	if g.At(4, 4) != 1000 {
		t.Errorf("input was modified: %v", g.At(4, 4))
	}
}
