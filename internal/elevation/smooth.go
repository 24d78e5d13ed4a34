package elevation

import (
	gomath "math"
	"sort"

	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
)

// Smooth removes single-cell spikes from a grid: a 3×3 Gaussian blur
// (σ = 0.8), a percentile clip to [P5, P95], then a second blur pass.
// The input is not modified.
func Smooth(g *Grid) *Grid {
	out := gaussian3(g)
	lo, hi := percentiles(out, 0.05, 0.95)
	for i, v := range out.Cells {
		out.Cells[i] = math.Clamp(v, lo, hi)
	}
	return gaussian3(out)
}

// gaussian3 applies a 3×3 Gaussian kernel with σ = 0.8. Edge cells clamp
// their neighborhood to the grid.
func gaussian3(g *Grid) *Grid {
	const sigma = 0.8
	var kernel [3][3]float64
	var total float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w := gomath.Exp(-float64(dx*dx+dy*dy) / (2 * sigma * sigma))
			kernel[dy+1][dx+1] = w
			total += w
		}
	}

	out := NewGrid(g.W, g.H, 0)
	for gy := 0; gy < g.H; gy++ {
		for gx := 0; gx < g.W; gx++ {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x := clampInt(gx+dx, 0, g.W-1)
					y := clampInt(gy+dy, 0, g.H-1)
					sum += g.At(x, y) * kernel[dy+1][dx+1]
				}
			}
			out.Set(gx, gy, sum/total)
		}
	}
	return out
}

// percentiles returns the plo and phi quantiles of the grid's cells.
func percentiles(g *Grid, plo, phi float64) (lo, hi float64) {
	sorted := make([]float64, len(g.Cells))
	copy(sorted, g.Cells)
	sort.Float64s(sorted)
	idx := func(p float64) float64 {
		i := int(p * float64(len(sorted)-1))
		return sorted[i]
	}
	return idx(plo), idx(phi)
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
