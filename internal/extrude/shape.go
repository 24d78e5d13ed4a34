// Package extrude turns 2D footprints with holes into closed prismatic
// meshes: earcut-triangulated caps and quad-strip side walls.
package extrude

import (
	"github.com/paulmach/orb"
)

// Shape is one outer contour plus zero or more hole rings. Rings may
// arrive in either winding; Normalize fixes them.
type Shape struct {
	Contour orb.Ring
	Holes   []orb.Ring
}

// degenerateEps scales the squared-distance threshold for duplicate-point
// removal.
const degenerateEps = 1e-10

// SignedArea returns Σ xᵢ·yᵢ₊₁ − xᵢ₊₁·yᵢ over the closed ring (twice the
// enclosed area). Negative means clockwise.
func SignedArea(ring orb.Ring) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum
}

func reverseRing(ring orb.Ring) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// Normalize enforces a clockwise contour and counter-clockwise holes,
// then strips degenerate points from every ring. It is idempotent and
// modifies the shape in place.
func (s *Shape) Normalize() {
	if SignedArea(s.Contour) > 0 {
		reverseRing(s.Contour)
	}
	for _, h := range s.Holes {
		if SignedArea(h) < 0 {
			reverseRing(h)
		}
	}
	s.Contour = dedupeRing(s.Contour)
	for i, h := range s.Holes {
		s.Holes[i] = dedupeRing(h)
	}
}

// dedupeRing drops points whose squared distance to the previous point is
// below eps²·S², where S is the coordinate magnitude of the pair. Passes
// repeat until nothing is removed.
func dedupeRing(ring orb.Ring) orb.Ring {
	for {
		removed := false
		out := ring[:0:0]
		for _, p := range ring {
			if len(out) == 0 {
				out = append(out, p)
				continue
			}
			prev := out[len(out)-1]
			dx := p[0] - prev[0]
			dy := p[1] - prev[1]
			s := maxF(maxF(absF(p[0]), absF(p[1])), maxF(absF(prev[0]), absF(prev[1])))
			if dx*dx+dy*dy <= degenerateEps*degenerateEps*s*s {
				removed = true
				continue
			}
			out = append(out, p)
		}
		ring = out
		if !removed {
			return ring
		}
	}
}

// vertexCount is |contour| + Σ|holes|.
func (s *Shape) vertexCount() int {
	n := len(s.Contour)
	for _, h := range s.Holes {
		n += len(h)
	}
	return n
}

// flatten lays the rings out as [x0 y0 x1 y1 ...] with hole start indices,
// the layout Earcut expects.
func (s *Shape) flatten() (data []float64, holeIndices []int) {
	data = make([]float64, 0, 2*s.vertexCount())
	for _, p := range s.Contour {
		data = append(data, p[0], p[1])
	}
	offset := len(s.Contour)
	for _, h := range s.Holes {
		holeIndices = append(holeIndices, offset)
		for _, p := range h {
			data = append(data, p[0], p[1])
		}
		offset += len(h)
	}
	return data, holeIndices
}
