package pipeline

import (
	gomath "math"

	"github.com/paulmach/orb"
)

// BufferLine widens a polyline into one rectangle per segment, width
// units across. Zero-length segments are skipped. The rectangles overlap
// at joints rather than mitering, which is fine for extruded roads.
func BufferLine(pts []orb.Point, width float64) []orb.Ring {
	half := width / 2
	var out []orb.Ring
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b[0]-a[0], b[1]-a[1]
		length := gomath.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Unit normal to the segment.
		nx, ny := -dy/length*half, dx/length*half
		out = append(out, orb.Ring{
			{a[0] + nx, a[1] + ny},
			{b[0] + nx, b[1] + ny},
			{b[0] - nx, b[1] - ny},
			{a[0] - nx, a[1] - ny},
		})
	}
	return out
}
