package extrude

import (
	gomath "math"
	"testing"
)

// triangulatedArea sums the unsigned areas of the output triangles.
func triangulatedArea(data []float64, tris []int) float64 {
	var sum float64
	for t := 0; t < len(tris); t += 3 {
		ax, ay := data[2*tris[t]], data[2*tris[t]+1]
		bx, by := data[2*tris[t+1]], data[2*tris[t+1]+1]
		cx, cy := data[2*tris[t+2]], data[2*tris[t+2]+1]
		sum += gomath.Abs((bx-ax)*(cy-ay)-(cx-ax)*(by-ay)) / 2
	}
	return sum
}

func TestEarcut(t *testing.T) {
	tests := []struct {
		name      string
		data      []float64
		holes     []int
		wantTris  int
		wantArea  float64
	}{
		{
			name:     "square",
			data:     []float64{0, 0, 10, 0, 10, 10, 0, 10},
			wantTris: 2,
			wantArea: 100,
		},
		{
			name:     "l shape",
			data:     []float64{0, 0, 10, 0, 10, 5, 5, 5, 5, 10, 0, 10},
			wantTris: 4,
			wantArea: 75,
		},
		{
			name:     "square with hole",
			data:     []float64{0, 0, 10, 0, 10, 10, 0, 10, 2, 2, 8, 2, 8, 8, 2, 8},
			holes:    []int{4},
			wantTris: 8,
			wantArea: 64,
		},
		{
			name:     "degenerate",
			data:     []float64{0, 0, 1, 1},
			wantTris: 0,
			wantArea: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := Earcut(tt.data, tt.holes)
			if len(tris)%3 != 0 {
				t.Fatalf("index count %d is not a multiple of 3", len(tris))
			}
			if got := len(tris) / 3; got != tt.wantTris {
				t.Errorf("triangle count = %d, want %d", got, tt.wantTris)
			}
			if got := triangulatedArea(tt.data, tris); gomath.Abs(got-tt.wantArea) > 1e-9 {
				t.Errorf("triangulated area = %v, want %v", got, tt.wantArea)
			}
		})
	}
}
