package elevation

import (
	"fmt"

	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
)

// Grid size limits enforced on every assembly request.
const (
	MinGridSize = 100
	MaxGridSize = 1000
)

// Grid is a row-major W×H elevation field in meters.
type Grid struct {
	W, H  int
	Cells []float64
}

// NewGrid allocates a grid with every cell set to fill.
func NewGrid(w, h int, fill float64) *Grid {
	cells := make([]float64, w*h)
	if fill != 0 {
		for i := range cells {
			cells[i] = fill
		}
	}
	return &Grid{W: w, H: h, Cells: cells}
}

// ClampGridSize limits a requested dimension to [MinGridSize, MaxGridSize].
func ClampGridSize(n int) int {
	return int(math.Clamp(float64(n), MinGridSize, MaxGridSize))
}

// At returns the cell value at (x, y) without bounds checking.
func (g *Grid) At(x, y int) float64 { return g.Cells[y*g.W+x] }

// Set stores v at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.Cells[y*g.W+x] = v }

// Range returns the min and max over finite cells. With no finite cells
// both are zero and ok is false.
func (g *Grid) Range() (lo, hi float64, ok bool) {
	for _, v := range g.Cells {
		if !math.IsFinite(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

// Sample bilinearly interpolates at normalized coordinates (u, v) in [0,1]².
// Non-finite corner cells contribute the fallback value.
func (g *Grid) Sample(u, v, fallback float64) float64 {
	fx := math.Clamp01(u) * float64(g.W-1)
	fy := math.Clamp01(v) * float64(g.H-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= g.W {
		x1 = g.W - 1
	}
	if y1 >= g.H {
		y1 = g.H - 1
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	get := func(x, y int) float64 {
		if e := g.At(x, y); math.IsFinite(e) {
			return e
		}
		return fallback
	}
	top := math.Lerp(get(x0, y0), get(x1, y0), tx)
	bot := math.Lerp(get(x0, y1), get(x1, y1), tx)
	return math.Lerp(top, bot, ty)
}

// Validate checks the cell count invariant and that every cell is finite.
func (g *Grid) Validate() error {
	if len(g.Cells) != g.W*g.H {
		return fmt.Errorf("grid %dx%d has %d cells", g.W, g.H, len(g.Cells))
	}
	for i, v := range g.Cells {
		if !math.IsFinite(v) {
			return fmt.Errorf("grid cell %d is not finite", i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	cells := make([]float64, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid{W: g.W, H: g.H, Cells: cells}
}
