// Package terrain generates a closed, manifold "terrain box" mesh from an
// elevation grid: a displaced top surface, a flat bottom and four skirt
// walls, with accumulated normals and elevation-ramped vertex colors.
package terrain

import (
	"fmt"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/elevation"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/mesh"
)

const (
	// MeshExtent is the side length of the centered square every mesh
	// spans in scene units.
	MeshExtent = 200.0

	// MinThickness keeps the top surface above the bottom plane so the
	// box never collapses to zero volume.
	MinThickness = 0.3

	// DefaultResolution is the sampled top-surface resolution T; the grid
	// is resampled bilinearly at T×T points.
	DefaultResolution = 64
	minResolution     = 2
	maxResolution     = 64
)

// Surface color ramp endpoints (#d2b48c → #a87b4d).
var (
	lowColor  = math.Vec3{X: 0xd2 / 255.0, Y: 0xb4 / 255.0, Z: 0x8c / 255.0}
	highColor = math.Vec3{X: 0xa8 / 255.0, Y: 0x7b / 255.0, Z: 0x4d / 255.0}
)

// Params controls terrain box generation.
type Params struct {
	VerticalExaggeration float64
	BaseHeight           float64
	// Resolution overrides DefaultResolution when > 0 and is clamped to
	// [2, 64].
	Resolution int
}

// Stats reports the top-surface height range of a generated box in scene
// units.
type Stats struct {
	MinZ, MaxZ float64
}

// Generate builds the terrain box from a grid and its elevation range.
// Row 0 of the grid is the northern edge; the mesh +Y axis points north.
func Generate(grid *elevation.Grid, minElev, maxElev float64, p Params) (*mesh.Buffers, Stats, error) {
	var stats Stats
	if grid == nil || grid.W < 2 || grid.H < 2 {
		return nil, stats, fmt.Errorf("terrain: grid must be at least 2x2")
	}
	if maxElev < minElev {
		return nil, stats, fmt.Errorf("terrain: inverted elevation range [%g, %g]", minElev, maxElev)
	}
	t := DefaultResolution
	if p.Resolution > 0 {
		t = p.Resolution
	}
	t = clampInt(t, minResolution, maxResolution)

	span := maxElev - minElev
	if span == 0 {
		span = 1
	}

	b := &mesh.Buffers{
		Positions: make([]float32, 0, 2*t*t*3),
		Colors:    make([]float32, 0, 2*t*t*3),
		Indices:   make([]uint32, 0, 12*t*t),
	}

	// Top vertices, then bottom vertices in the same (i, j) order so the
	// bottom twin of top vertex k is k + t*t. Walls share these vertices,
	// keeping the box edge-welded.
	relief := make([]float64, t*t)
	first := true
	for j := 0; j < t; j++ {
		for i := 0; i < t; i++ {
			u := float64(i) / float64(t-1)
			v := float64(j) / float64(t-1)
			e := grid.Sample(u, 1-v, minElev) // j=0 is the southern row
			n := math.Clamp01((e - minElev) / span)
			relief[j*t+i] = n

			x := (u - 0.5) * MeshExtent
			y := (v - 0.5) * MeshExtent
			z := p.BaseHeight + n*p.VerticalExaggeration
			if z < MinThickness {
				z = MinThickness
			}
			if first {
				stats.MinZ, stats.MaxZ = z, z
				first = false
			} else if z < stats.MinZ {
				stats.MinZ = z
			} else if z > stats.MaxZ {
				stats.MaxZ = z
			}
			b.Positions = append(b.Positions, float32(x), float32(y), float32(z))

			c := lowColor.Lerp(highColor, float32(n))
			b.Colors = append(b.Colors, c.X, c.Y, c.Z)
		}
	}
	for j := 0; j < t; j++ {
		for i := 0; i < t; i++ {
			u := float64(i) / float64(t-1)
			v := float64(j) / float64(t-1)
			x := (u - 0.5) * MeshExtent
			y := (v - 0.5) * MeshExtent
			b.Positions = append(b.Positions, float32(x), float32(y), 0)

			c := lowColor.Lerp(highColor, float32(relief[j*t+i])).Scale(0.6)
			b.Colors = append(b.Colors, c.X, c.Y, c.Z)
		}
	}

	top := func(i, j int) uint32 { return uint32(j*t + i) }
	bottom := func(i, j int) uint32 { return uint32(t*t + j*t + i) }

	// Top surface: counter-clockwise seen from above.
	for j := 0; j < t-1; j++ {
		for i := 0; i < t-1; i++ {
			a, c, d, e := top(i, j), top(i+1, j), top(i+1, j+1), top(i, j+1)
			b.Indices = append(b.Indices, a, c, d, a, d, e)
		}
	}
	// Bottom: clockwise from below, i.e. reversed top winding.
	for j := 0; j < t-1; j++ {
		for i := 0; i < t-1; i++ {
			a, c, d, e := bottom(i, j), bottom(i+1, j), bottom(i+1, j+1), bottom(i, j+1)
			b.Indices = append(b.Indices, a, d, c, a, e, d)
		}
	}
	// Skirt walls, outward facing.
	for i := 0; i < t-1; i++ {
		// South edge (j = 0): outward is -Y.
		b.Indices = append(b.Indices,
			top(i, 0), bottom(i, 0), bottom(i+1, 0),
			top(i, 0), bottom(i+1, 0), top(i+1, 0))
		// North edge (j = t-1): outward is +Y.
		b.Indices = append(b.Indices,
			top(i, t-1), bottom(i+1, t-1), bottom(i, t-1),
			top(i, t-1), top(i+1, t-1), bottom(i+1, t-1))
	}
	for j := 0; j < t-1; j++ {
		// West edge (i = 0): outward is -X.
		b.Indices = append(b.Indices,
			top(0, j), bottom(0, j+1), bottom(0, j),
			top(0, j), top(0, j+1), bottom(0, j+1))
		// East edge (i = t-1): outward is +X.
		b.Indices = append(b.Indices,
			top(t-1, j), bottom(t-1, j), bottom(t-1, j+1),
			top(t-1, j), bottom(t-1, j+1), top(t-1, j+1))
	}

	accumulateBoxNormals(b, t)
	if err := b.Validate(); err != nil {
		return nil, stats, fmt.Errorf("terrain: %w", err)
	}
	return b, stats, nil
}

// ProcessGrid converts raw elevations to the same scene-space heights the
// box top surface uses, so callers can seat other geometry on the terrain.
// The returned grid keeps the input dimensions and row order.
func ProcessGrid(grid *elevation.Grid, minElev, maxElev float64, p Params) *elevation.Grid {
	span := maxElev - minElev
	if span == 0 {
		span = 1
	}
	out := elevation.NewGrid(grid.W, grid.H, 0)
	for i, e := range grid.Cells {
		if !math.IsFinite(e) {
			e = minElev
		}
		n := math.Clamp01((e - minElev) / span)
		z := p.BaseHeight + n*p.VerticalExaggeration
		if z < MinThickness {
			z = MinThickness
		}
		out.Cells[i] = z
	}
	return out
}

// accumulateBoxNormals sums face normals per vertex and normalizes,
// falling back to +Z on the top surface and -Z on the bottom.
func accumulateBoxNormals(b *mesh.Buffers, t int) {
	b.AccumulateNormals(mesh.Up())
	// Degenerate bottom vertices received the top fallback; flip them.
	for k := t * t; k < 2*t*t; k++ {
		if b.Normals[3*k] == 0 && b.Normals[3*k+1] == 0 && b.Normals[3*k+2] == 1 {
			b.Normals[3*k+2] = -1
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
