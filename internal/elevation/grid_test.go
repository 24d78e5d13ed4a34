package elevation

import (
	gomath "math"
	"testing"
)

func TestClampGridSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{10, MinGridSize},
		{MinGridSize, MinGridSize},
		{256, 256},
		{MaxGridSize, MaxGridSize},
		{5000, MaxGridSize},
	}
	for _, tt := range tests {
		if got := ClampGridSize(tt.in); got != tt.want {
			t.Errorf("ClampGridSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGridRange(t *testing.T) {
	g := NewGrid(2, 2, 0)
	g.Set(0, 0, 12)
	g.Set(1, 0, gomath.NaN())
	g.Set(0, 1, -3)
	g.Set(1, 1, 7)

	lo, hi, ok := g.Range()
	if !ok {
		t.Fatal("Range ok = false, want true")
	}
	if lo != -3 || hi != 12 {
		t.Errorf("Range = (%v, %v), want (-3, 12)", lo, hi)
	}

	empty := NewGrid(2, 2, gomath.NaN())
	if _, _, ok := empty.Range(); ok {
		t.Error("Range over all-NaN grid reported ok")
	}
}

func TestGridSample(t *testing.T) {
	g := &Grid{W: 2, H: 2, Cells: []float64{0, 10, 20, 30}}

	tests := []struct {
		name string
		u, v float64
		want float64
	}{
		{"top left", 0, 0, 0},
		{"top right", 1, 0, 10},
		{"bottom left", 0, 1, 20},
		{"bottom right", 1, 1, 30},
		{"center", 0.5, 0.5, 15},
		{"top edge midpoint", 0.5, 0, 5},
		{"clamped outside", -2, 3, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Sample(tt.u, tt.v, 0); gomath.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Sample(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestGridSampleFallback(t *testing.T) {
	g := &Grid{W: 2, H: 2, Cells: []float64{gomath.NaN(), 10, 20, 30}}
	if got := g.Sample(0, 0, -42); got != -42 {
		t.Errorf("Sample over NaN corner = %v, want fallback -42", got)
	}
}

func TestGridValidate(t *testing.T) {
	g := NewGrid(3, 3, 1)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	g.Cells = g.Cells[:8]
	if err := g.Validate(); err == nil {
		t.Error("Validate accepted a short cell slice")
	}

	g = NewGrid(3, 3, 1)
	g.Set(1, 1, gomath.Inf(1))
	if err := g.Validate(); err == nil {
		t.Error("Validate accepted a non-finite cell")
	}
}

func TestGridClone(t *testing.T) {
	g := NewGrid(2, 2, 5)
	c := g.Clone()
	c.Set(0, 0, 99)
	if g.At(0, 0) != 5 {
		t.Errorf("mutating the clone changed the original: %v", g.At(0, 0))
	}
}
