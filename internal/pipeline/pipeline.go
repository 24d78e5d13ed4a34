// Package pipeline turns vector map features into extruded meshes seated
// on the terrain: bbox filtering, height selection, terrain seating,
// clipping, extrusion and per-layer merging.
package pipeline

import (
	"context"
	"fmt"
	gomath "math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/elevation"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/extrude"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/terrain"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
	mathx "github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/mesh"
)

const (
	// MinHeight and MaxHeight bound the extrusion depth of any feature.
	MinHeight = 0.5
	MaxHeight = 500.0

	// SubmergeOffset sinks seated features slightly below the terrain
	// surface so no gap shows at the seam.
	SubmergeOffset = 0.01

	defaultLineWidth = 1.0
)

// Dataset describes one vector layer and how its features are extruded.
type Dataset struct {
	// SourceLayer names the vector-tile layer to read.
	SourceLayer string `json:"source_layer"`
	// Color is the layer fill as "#rrggbb"; malformed values fall back to
	// gray.
	Color string `json:"color"`

	// ExtrusionDepth forces the feature height when set.
	ExtrusionDepth *float64 `json:"extrusion_depth,omitempty"`
	// MinExtrusionDepth raises too-flat features when set.
	MinExtrusionDepth *float64 `json:"min_extrusion_depth,omitempty"`
	// HeightScaleFactor multiplies the selected height when set.
	HeightScaleFactor *float64 `json:"height_scale_factor,omitempty"`
	// UseAdaptiveScaleFactor scales heights by footprint area and the
	// region's elevation relief.
	UseAdaptiveScaleFactor bool `json:"use_adaptive_scale_factor,omitempty"`

	// Top and Bottom bound the layer's height band, used when neither the
	// dataset nor the feature carries a height.
	Top    float64 `json:"top,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`

	// ZOffset shifts the whole layer vertically after seating.
	ZOffset float64 `json:"z_offset,omitempty"`
	// UseSameZOffset seats every feature at the dataset-wide terrain
	// minimum instead of per-feature minima.
	UseSameZOffset bool `json:"use_same_z_offset,omitempty"`

	// Steps subdivides extrusion walls vertically; defaults to 1.
	Steps int `json:"steps,omitempty"`
	// LineWidth is the buffered width of line features in scene units.
	LineWidth float64 `json:"line_width,omitempty"`
}

// Request is one layer's worth of pipeline work.
type Request struct {
	BBox     geo.BBox
	Dataset  Dataset
	Features []Feature
	// Grid holds scene-space terrain heights over BBox, row 0 north, the
	// output of terrain.ProcessGrid.
	Grid *elevation.Grid
	// MinElev and MaxElev are the source elevation range in meters, used
	// only by the adaptive scale factor.
	MinElev, MaxElev float64
}

// Process extrudes every feature of the request and merges the results
// into one buffer set. Features that miss the bbox or collapse during
// clipping are skipped silently.
func Process(ctx context.Context, req Request, log *zap.Logger) (*mesh.Buffers, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !req.BBox.Valid() {
		return nil, fmt.Errorf("pipeline: invalid bbox %+v", req.BBox)
	}
	if req.Grid == nil {
		return nil, fmt.Errorf("pipeline: nil elevation grid")
	}

	ds := req.Dataset
	steps := ds.Steps
	if steps < 1 {
		steps = 1
	}
	clip := geo.Rect{
		MinX: -terrain.MeshExtent / 2, MinY: -terrain.MeshExtent / 2,
		MaxX: terrain.MeshExtent / 2, MaxY: terrain.MeshExtent / 2,
	}
	color := ParseHexColor(ds.Color)

	var sharedOffset float64
	if ds.UseSameZOffset {
		sharedOffset = latticeMin(req.Grid) - SubmergeOffset + ds.ZOffset
	}

	var parts []*mesh.Buffers
	kept, skipped := 0, 0
	for i := range req.Features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := &req.Features[i]

		var buf *mesh.Buffers
		switch {
		case len(f.Polygon) > 0:
			buf = buildPolygon(&req, f, steps, clip, sharedOffset)
		case len(f.Line) >= 2:
			buf = buildLine(&req, f, steps, clip, sharedOffset)
		}
		if buf == nil || len(buf.Indices) == 0 {
			skipped++
			continue
		}
		applyColor(buf, color)
		parts = append(parts, buf)
		kept++
	}

	log.Debug("layer pipeline done",
		zap.String("layer", ds.SourceLayer),
		zap.Int("features", len(req.Features)),
		zap.Int("kept", kept),
		zap.Int("skipped", skipped))

	if len(parts) == 0 {
		return &mesh.Buffers{}, nil
	}
	return mesh.Merge(parts...), nil
}

func buildPolygon(req *Request, f *Feature, steps int, clip geo.Rect, sharedOffset float64) *mesh.Buffers {
	outer := f.Polygon[0]
	if len(outer) < 3 || !geo.RingIntersectsBBox(outer, req.BBox) {
		return nil
	}

	areaM2 := orbgeo.Area(f.Polygon)
	h := selectHeight(&req.Dataset, f, areaM2, req.MaxElev-req.MinElev)

	zOffset := sharedOffset
	if !req.Dataset.UseSameZOffset {
		zOffset = seatOffset(req, outer)
	}

	contour := geo.ClipRing(transformRing(outer, req.BBox), clip)
	if len(contour) < 3 {
		return nil
	}
	shape := extrude.Shape{Contour: contour}
	for _, hole := range f.Polygon[1:] {
		clipped := geo.ClipRing(transformRing(hole, req.BBox), clip)
		if len(clipped) >= 3 {
			shape.Holes = append(shape.Holes, clipped)
		}
	}

	buf := extrude.Extrude([]extrude.Shape{shape}, extrude.Options{
		Depth:          h,
		Steps:          steps,
		SkipBottomFace: true,
	})
	translateZ(buf, zOffset)
	return buf
}

func buildLine(req *Request, f *Feature, steps int, clip geo.Rect, sharedOffset float64) *mesh.Buffers {
	if !geo.BBoxFromBound(f.Line.Bound()).Intersects(req.BBox) {
		return nil
	}

	// Area-based scaling has no meaning for a line; height is selected
	// without the adaptive factor.
	ds := req.Dataset
	ds.UseAdaptiveScaleFactor = false
	h := selectHeight(&ds, f, 0, 0)

	zOffset := sharedOffset
	if !req.Dataset.UseSameZOffset {
		zOffset = seatOffset(req, orb.Ring(f.Line))
	}

	width := req.Dataset.LineWidth
	if width <= 0 {
		width = defaultLineWidth
	}
	pts := make([]orb.Point, len(f.Line))
	for i, p := range f.Line {
		pts[i] = transformPoint(p, req.BBox)
	}

	var shapes []extrude.Shape
	for _, quad := range BufferLine(pts, width) {
		clipped := geo.ClipRing(quad, clip)
		if len(clipped) >= 3 {
			shapes = append(shapes, extrude.Shape{Contour: clipped})
		}
	}
	if len(shapes) == 0 {
		return nil
	}

	buf := extrude.Extrude(shapes, extrude.Options{
		Depth:          h,
		Steps:          steps,
		SkipBottomFace: true,
	})
	translateZ(buf, zOffset)
	return buf
}

// selectHeight picks the extrusion depth: dataset override, then the
// feature's height property, then the layer band, clamped and scaled.
func selectHeight(ds *Dataset, f *Feature, areaM2, elevSpan float64) float64 {
	var h float64
	switch {
	case ds.ExtrusionDepth != nil:
		h = *ds.ExtrusionDepth
	default:
		if v, ok := propFloat(f.Props, "height"); ok {
			h = v
		} else if v, ok := propFloat(f.Props, "render_height"); ok {
			h = v
		} else {
			h = ds.Top - ds.Bottom + 0.1
		}
	}

	h = mathx.Clamp(h, MinHeight, MaxHeight)
	if ds.MinExtrusionDepth != nil && h < *ds.MinExtrusionDepth {
		h = *ds.MinExtrusionDepth
	}
	if ds.HeightScaleFactor != nil {
		h *= *ds.HeightScaleFactor
	}
	if ds.UseAdaptiveScaleFactor {
		areaKm2 := areaM2 / 1e6
		relief := gomath.Max(10, elevSpan)
		factor := gomath.Sqrt(areaKm2/100) * (1000 / relief)
		h *= mathx.Clamp(factor, 0.1, 10)
	}
	return h
}

// seatOffset samples the terrain under each footprint vertex and seats
// the feature on the minimum, slightly submerged.
func seatOffset(req *Request, ring orb.Ring) float64 {
	lo := gomath.Inf(1)
	for _, p := range ring {
		u, v := req.BBox.Normalize(p)
		s := req.Grid.Sample(mathx.Clamp01(u), mathx.Clamp01(1-v), 0)
		if s < lo {
			lo = s
		}
	}
	if gomath.IsInf(lo, 1) {
		lo = 0
	}
	return lo - SubmergeOffset + req.Dataset.ZOffset
}

// latticeMin samples the grid on a 10x10 lattice and returns the lowest
// value, the dataset-wide seat for use_same_z_offset layers.
func latticeMin(grid *elevation.Grid) float64 {
	lo := gomath.Inf(1)
	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			s := grid.Sample(float64(i)/9, float64(j)/9, 0)
			if s < lo {
				lo = s
			}
		}
	}
	if gomath.IsInf(lo, 1) {
		return 0
	}
	return lo
}

// transformPoint maps lng/lat to the centered scene square.
func transformPoint(p orb.Point, bbox geo.BBox) orb.Point {
	u, v := bbox.Normalize(p)
	return orb.Point{
		(u - 0.5) * terrain.MeshExtent,
		(v - 0.5) * terrain.MeshExtent,
	}
}

func transformRing(ring orb.Ring, bbox geo.BBox) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = transformPoint(p, bbox)
	}
	return out
}

func translateZ(b *mesh.Buffers, dz float64) {
	if dz == 0 {
		return
	}
	for i := 2; i < len(b.Positions); i += 3 {
		b.Positions[i] += float32(dz)
	}
}

func applyColor(b *mesh.Buffers, c [3]float32) {
	n := b.VertexCount()
	b.Colors = make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		b.Colors = append(b.Colors, c[0], c[1], c[2])
	}
}
