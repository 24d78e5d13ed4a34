package geo

import (
	"github.com/paulmach/orb"
)

// Rect is an axis-aligned clip rectangle in arbitrary planar coordinates.
// BBox converts via ClipRect; mesh-space callers build one directly.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// ClipRect returns the box as a planar clip rectangle.
func (b BBox) ClipRect() Rect {
	return Rect{MinX: b.MinLng, MinY: b.MinLat, MaxX: b.MaxLng, MaxY: b.MaxLat}
}

type clipEdge int

const (
	edgeLeft clipEdge = iota
	edgeRight
	edgeBottom
	edgeTop
)

func (r Rect) inside(e clipEdge, p orb.Point) bool {
	switch e {
	case edgeLeft:
		return p[0] >= r.MinX
	case edgeRight:
		return p[0] <= r.MaxX
	case edgeBottom:
		return p[1] >= r.MinY
	default:
		return p[1] <= r.MaxY
	}
}

func (r Rect) intersect(e clipEdge, a, b orb.Point) orb.Point {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	switch e {
	case edgeLeft:
		t := (r.MinX - a[0]) / dx
		return orb.Point{r.MinX, a[1] + t*dy}
	case edgeRight:
		t := (r.MaxX - a[0]) / dx
		return orb.Point{r.MaxX, a[1] + t*dy}
	case edgeBottom:
		t := (r.MinY - a[1]) / dy
		return orb.Point{a[0] + t*dx, r.MinY}
	default:
		t := (r.MaxY - a[1]) / dy
		return orb.Point{a[0] + t*dx, r.MaxY}
	}
}

// ClipRing clips a ring against the rectangle with the Sutherland–Hodgman
// algorithm. The result may be empty; results with fewer than 3 vertices
// are returned as nil.
func ClipRing(ring orb.Ring, r Rect) orb.Ring {
	out := make(orb.Ring, len(ring))
	copy(out, ring)

	for e := edgeLeft; e <= edgeTop; e++ {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = out[:0:0]
		prev := in[len(in)-1]
		for _, cur := range in {
			curIn := r.inside(e, cur)
			prevIn := r.inside(e, prev)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, r.intersect(e, prev, cur), cur)
			case !curIn && prevIn:
				out = append(out, r.intersect(e, prev, cur))
			}
			prev = cur
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}
