package geo

import (
	"github.com/paulmach/orb"
)

// direction returns the orientation of point p relative to segment a→b:
// positive for one side, negative for the other, zero when collinear.
func direction(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// onSegment reports whether collinear point p falls within the bounding
// interval of segment a→b.
func onSegment(a, b, p orb.Point) bool {
	return min(a[0], b[0]) <= p[0] && p[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= p[1] && p[1] <= max(a[1], b[1])
}

// SegmentsIntersect reports whether segments p1→p2 and p3→p4 intersect.
// Collinear endpoints lying within the other segment's bounding interval
// count as intersecting.
func SegmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}

// PointInRing applies the even-odd ray-casting rule. Horizontal edges do
// not flip the inside bit because the j/i latitude comparison excludes them.
func PointInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > p[1]) != (yj > p[1]) &&
			p[0] < (xj-xi)*(p[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// RingIntersectsBBox reports whether a polygon outer ring overlaps the box.
// True when any vertex is inside the box, any ring edge crosses a box edge,
// any box corner is inside the ring, or every vertex is inside the box.
func RingIntersectsBBox(ring orb.Ring, b BBox) bool {
	if len(ring) == 0 {
		return false
	}

	// Cheap reject on the ring's own bounds.
	rb := BBoxFromBound(ring.Bound())
	if !rb.Intersects(b) {
		return false
	}

	allInside := true
	for _, p := range ring {
		if b.Contains(p) {
			return true
		}
		allInside = false
	}
	if allInside {
		return true
	}

	corners := [4]orb.Point{
		{b.MinLng, b.MinLat},
		{b.MaxLng, b.MinLat},
		{b.MaxLng, b.MaxLat},
		{b.MinLng, b.MaxLat},
	}
	edges := [4][2]orb.Point{
		{corners[0], corners[1]},
		{corners[1], corners[2]},
		{corners[2], corners[3]},
		{corners[3], corners[0]},
	}
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		c := ring[(i+1)%n]
		for _, e := range edges {
			if SegmentsIntersect(a, c, e[0], e[1]) {
				return true
			}
		}
	}
	for _, c := range corners {
		if PointInRing(c, ring) {
			return true
		}
	}
	return false
}
