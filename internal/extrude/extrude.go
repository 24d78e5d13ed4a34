package extrude

import (
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/mesh"
)

// Options control a single extrusion run.
type Options struct {
	// Depth is the extrusion height along +z.
	Depth float64
	// Steps subdivides the walls vertically. Values below 1 become 1.
	Steps int
	// SkipBottomFace omits the downward cap, for meshes that will be
	// seated on another surface.
	SkipBottomFace bool
}

// Extrude builds a prism for every shape and concatenates them into one
// buffer set. Each shape is normalized first; shapes whose contour
// collapses below three points are skipped.
func Extrude(shapes []Shape, opts Options) *mesh.Buffers {
	steps := opts.Steps
	if steps < 1 {
		steps = 1
	}

	out := &mesh.Buffers{}
	for i := range shapes {
		extrudeShape(&shapes[i], opts.Depth, steps, opts.SkipBottomFace, out)
	}
	if len(out.Positions) > 0 {
		out.AccumulateNormals(mesh.Up())
	}
	return out
}

func extrudeShape(s *Shape, depth float64, steps int, skipBottom bool, out *mesh.Buffers) {
	s.Normalize()
	if len(s.Contour) < 3 {
		return
	}
	holes := s.Holes[:0]
	for _, h := range s.Holes {
		if len(h) >= 3 {
			holes = append(holes, h)
		}
	}
	s.Holes = holes

	data, holeIndices := s.flatten()
	vlen := len(data) / 2
	tris := Earcut(data, holeIndices)
	if len(tris) == 0 {
		return
	}

	base := uint32(len(out.Positions) / 3)

	// One copy of the footprint per step level, bottom to top.
	for st := 0; st <= steps; st++ {
		z := depth * float64(st) / float64(steps)
		for v := 0; v < vlen; v++ {
			x, y := data[2*v], data[2*v+1]
			out.Positions = append(out.Positions, float32(x), float32(y), float32(z))
			out.Normals = append(out.Normals, 0, 0, 0)
			out.UVs = append(out.UVs, float32(x), float32(y))
		}
	}

	if !skipBottom {
		// Reversed so the cap faces down.
		for t := 0; t < len(tris); t += 3 {
			out.Indices = append(out.Indices,
				base+uint32(tris[t+2]),
				base+uint32(tris[t+1]),
				base+uint32(tris[t]),
			)
		}
	}

	topOff := base + uint32(vlen*steps)
	for t := 0; t < len(tris); t += 3 {
		out.Indices = append(out.Indices,
			topOff+uint32(tris[t]),
			topOff+uint32(tris[t+1]),
			topOff+uint32(tris[t+2]),
		)
	}

	// Walls, one quad strip per ring. Edges run against the ring winding
	// so the faces point away from the solid.
	ringStart := 0
	wallRing := func(n int) {
		for i := 0; i < n; i++ {
			j := ringStart + (i+1)%n
			k := ringStart + i
			for st := 0; st < steps; st++ {
				a := base + uint32(j+vlen*st)
				b := base + uint32(k+vlen*st)
				c := base + uint32(k+vlen*(st+1))
				d := base + uint32(j+vlen*(st+1))
				out.Indices = append(out.Indices, a, b, d, b, c, d)
			}
		}
		ringStart += n
	}
	wallRing(len(s.Contour))
	for _, h := range s.Holes {
		wallRing(len(h))
	}
}
