package elevation

import (
	"context"
	gomath "math"
	"sync"

	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/tilesource"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
	"github.com/paulmach/orb/maptile"
)

// guardBand expands the request bbox when testing whether a tile can
// contribute samples, in degrees.
const guardBand = 0.01

// Synthetic fallback range published when no tile delivered a single
// valid elevation.
const (
	FallbackMin = 0.0
	FallbackMax = 1000.0
)

// TileProvider resolves a tile id to a decoded raster tile, reporting
// whether it came from cache. Implementations populate their cache on miss.
type TileProvider interface {
	GetTile(ctx context.Context, t maptile.Tile) (tile *tilesource.RasterTile, cacheHit bool, err error)
}

// AssembleParams describes one mosaic request.
type AssembleParams struct {
	BBox  geo.BBox
	GridW int
	GridH int
	Tiles []maptile.Tile

	// Serial switches to the last-writer-wins per-pixel pass with
	// expanding-ring gap filling. The default is the blended pass that
	// fans out one worker per tile.
	Serial bool
}

// Result is the published outcome of an assembly.
type Result struct {
	Grid *Grid
	// Min and Max are the raw extremes over valid samples.
	Min, Max float64
	// ProcessedMin and ProcessedMax widen degenerate ranges (span < 1 m)
	// to ±500 m around the midpoint for display purposes.
	ProcessedMin, ProcessedMax float64
	// CacheHitRate is hits/(hits+misses) over the tile resolutions of
	// this request, 0 when no tile was requested.
	CacheHitRate float64
	// Synthetic is set when no valid elevation was seen and the grid is
	// the fallback ramp.
	Synthetic bool
}

// Assembler builds elevation grids from raster tile mosaics.
type Assembler struct {
	provider TileProvider
	log      *zap.Logger
}

// NewAssembler returns an assembler reading tiles from the provider.
func NewAssembler(provider TileProvider, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{provider: provider, log: log}
}

// Assemble resolves the request's tiles and resamples them into a single
// grid covering the bbox. Individual tile failures are logged and skipped;
// with no valid samples at all the synthetic ramp is returned.
func (a *Assembler) Assemble(ctx context.Context, p AssembleParams) (*Result, error) {
	w := ClampGridSize(p.GridW)
	h := ClampGridSize(p.GridH)

	tiles, hits, misses := a.resolveTiles(ctx, p.Tiles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := NewGrid(w, h, gomath.NaN())
	var lo, hi float64
	var seen bool
	if p.Serial {
		lo, hi, seen = a.stampSerial(ctx, grid, p.BBox, tiles)
	} else {
		lo, hi, seen = a.blendParallel(ctx, grid, p.BBox, tiles)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Grid: grid}
	if !seen {
		fillRamp(grid)
		res.Min, res.Max = FallbackMin, FallbackMax
		res.ProcessedMin, res.ProcessedMax = FallbackMin, FallbackMax
		res.Synthetic = true
	} else {
		fillGaps(grid, lo, hi)
		res.Min, res.Max = lo, hi
		res.ProcessedMin, res.ProcessedMax = widenDegenerate(lo, hi)
	}
	if total := hits + misses; total > 0 {
		res.CacheHitRate = float64(hits) / float64(total)
	}
	return res, nil
}

// resolveTiles fetches every requested tile, counting cache hits and
// skipping failures.
func (a *Assembler) resolveTiles(ctx context.Context, ids []maptile.Tile) (tiles []*tilesource.RasterTile, hits, misses int) {
	for _, id := range ids {
		if ctx.Err() != nil {
			return tiles, hits, misses
		}
		t, hit, err := a.provider.GetTile(ctx, id)
		if hit {
			hits++
		} else {
			misses++
		}
		if err != nil {
			a.log.Warn("tile fetch failed, continuing without it",
				zap.Uint32("z", uint32(id.Z)), zap.Uint32("x", id.X), zap.Uint32("y", id.Y),
				zap.Error(err))
			continue
		}
		tiles = append(tiles, t)
	}
	return tiles, hits, misses
}

// tileContributes rejects tiles whose bounds fall outside the guard-banded
// request bbox.
func tileContributes(t *tilesource.RasterTile, bbox geo.BBox) bool {
	return geo.TileBBox(t.Tile).Intersects(bbox.Expand(guardBand))
}

// stampSerial is the last-writer-wins pass: every valid pixel is mapped to
// the nearest grid cell and assigned directly.
func (a *Assembler) stampSerial(ctx context.Context, grid *Grid, bbox geo.BBox, tiles []*tilesource.RasterTile) (lo, hi float64, seen bool) {
	for _, t := range tiles {
		if ctx.Err() != nil {
			return lo, hi, seen
		}
		if !tileContributes(t, bbox) {
			continue
		}
		tb := geo.TileBBox(t.Tile)
		for py := 0; py < t.Height; py++ {
			// Row 0 is the tile's northern edge.
			lat := tb.MaxLat - (tb.MaxLat-tb.MinLat)*float64(py)/float64(t.Height-1)
			gy := int(gomath.Round((bbox.MaxLat - lat) / bbox.Height() * float64(grid.H-1)))
			if gy < 0 || gy >= grid.H {
				continue
			}
			for px := 0; px < t.Width; px++ {
				r, g, b, alpha := t.At(px, py)
				if alpha == 0 {
					continue
				}
				e := DecodeRGB(r, g, b)
				if !Plausible(e) {
					continue
				}
				lng := tb.MinLng + (tb.MaxLng-tb.MinLng)*float64(px)/float64(t.Width-1)
				gx := int(gomath.Round((lng - bbox.MinLng) / bbox.Width() * float64(grid.W-1)))
				if gx < 0 || gx >= grid.W {
					continue
				}
				grid.Set(gx, gy, e)
				if !seen {
					lo, hi, seen = e, e, true
				} else if e < lo {
					lo = e
				} else if e > hi {
					hi = e
				}
			}
		}
	}
	return lo, hi, seen
}

// blendParallel is the smoothing pass: each worker accumulates weighted
// samples for one tile into private sum/weight buffers that are merged
// under a mutex. The weight decays towards tile edges so overlapping tiles
// blend instead of seaming.
func (a *Assembler) blendParallel(ctx context.Context, grid *Grid, bbox geo.BBox, tiles []*tilesource.RasterTile) (lo, hi float64, seen bool) {
	n := grid.W * grid.H
	sums := make([]float64, n)
	weights := make([]float64, n)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, t := range tiles {
		if !tileContributes(t, bbox) {
			continue
		}
		wg.Add(1)
		go func(t *tilesource.RasterTile) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			localSums := make([]float64, n)
			localWeights := make([]float64, n)
			accumulateTile(t, bbox, grid.W, grid.H, localSums, localWeights)
			mu.Lock()
			for i := range localWeights {
				if localWeights[i] > 0 {
					sums[i] += localSums[i]
					weights[i] += localWeights[i]
				}
			}
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	for i := range weights {
		if weights[i] <= 0 {
			continue
		}
		e := sums[i] / weights[i]
		grid.Cells[i] = e
		if !seen {
			lo, hi, seen = e, e, true
			continue
		}
		if e < lo {
			lo = e
		}
		if e > hi {
			hi = e
		}
	}
	return lo, hi, seen
}

// accumulateTile walks the grid cells covered by one tile, bilinearly
// sampling the tile at each cell's fractional pixel position and adding
// the edge-decayed weighted sample.
func accumulateTile(t *tilesource.RasterTile, bbox geo.BBox, gw, gh int, sums, weights []float64) {
	tb := geo.TileBBox(t.Tile)
	for gy := 0; gy < gh; gy++ {
		lat := bbox.MaxLat - bbox.Height()*float64(gy)/float64(gh-1)
		v := (tb.MaxLat - lat) / (tb.MaxLat - tb.MinLat)
		if v < 0 || v > 1 {
			continue
		}
		for gx := 0; gx < gw; gx++ {
			lng := bbox.MinLng + bbox.Width()*float64(gx)/float64(gw-1)
			u := (lng - tb.MinLng) / (tb.MaxLng - tb.MinLng)
			if u < 0 || u > 1 {
				continue
			}
			e, ok := sampleTile(t, u, v)
			if !ok {
				continue
			}
			d := gomath.Max(gomath.Abs(2*u-1), gomath.Abs(2*v-1))
			w := 1 - d*d*0.7
			i := gy*gw + gx
			sums[i] += e * w
			weights[i] += w
		}
	}
}

// sampleTile decodes the four pixels bracketing the fractional position
// (u, v) in [0,1]² and interpolates. Invalid pixels poison the sample.
func sampleTile(t *tilesource.RasterTile, u, v float64) (float64, bool) {
	fx := u * float64(t.Width-1)
	fy := v * float64(t.Height-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := x0+1, y0+1
	if x1 >= t.Width {
		x1 = t.Width - 1
	}
	if y1 >= t.Height {
		y1 = t.Height - 1
	}
	decode := func(x, y int) (float64, bool) {
		r, g, b, alpha := t.At(x, y)
		if alpha == 0 {
			return 0, false
		}
		e := DecodeRGB(r, g, b)
		return e, Plausible(e)
	}
	e00, ok00 := decode(x0, y0)
	e10, ok10 := decode(x1, y0)
	e01, ok01 := decode(x0, y1)
	e11, ok11 := decode(x1, y1)
	if !ok00 || !ok10 || !ok01 || !ok11 {
		return 0, false
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	top := math.Lerp(e00, e10, tx)
	bot := math.Lerp(e01, e11, tx)
	return math.Lerp(top, bot, ty), true
}

// fillGaps replaces NaN cells by expanding-ring averaging: for radii 1..9
// average the finite neighbors within the Chebyshev ring, stopping at the
// first radius that yields any. Cells still empty take the range midpoint.
func fillGaps(grid *Grid, lo, hi float64) {
	mid := (lo + hi) / 2
	src := grid.Clone()
	for gy := 0; gy < grid.H; gy++ {
		for gx := 0; gx < grid.W; gx++ {
			if math.IsFinite(src.At(gx, gy)) {
				continue
			}
			grid.Set(gx, gy, ringAverage(src, gx, gy, mid))
		}
	}
}

func ringAverage(src *Grid, gx, gy int, fallback float64) float64 {
	for r := 1; r <= 9; r++ {
		var sum float64
		var count int
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				x, y := gx+dx, gy+dy
				if x < 0 || y < 0 || x >= src.W || y >= src.H {
					continue
				}
				if v := src.At(x, y); math.IsFinite(v) {
					sum += v
					count++
				}
			}
		}
		if count > 0 {
			return sum / float64(count)
		}
	}
	return fallback
}

// fillRamp writes the synthetic fallback surface e(x,y) = (x/W)·(y/H)·500.
func fillRamp(grid *Grid) {
	for gy := 0; gy < grid.H; gy++ {
		for gx := 0; gx < grid.W; gx++ {
			grid.Set(gx, gy, float64(gx)/float64(grid.W)*float64(gy)/float64(grid.H)*500.0)
		}
	}
}

// widenDegenerate expands ranges narrower than one meter to ±500 m around
// the midpoint so display scaling stays well defined.
func widenDegenerate(lo, hi float64) (float64, float64) {
	if hi-lo >= 1 {
		return lo, hi
	}
	mid := (lo + hi) / 2
	return mid - 500, mid + 500
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
