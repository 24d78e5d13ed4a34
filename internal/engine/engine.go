// Package engine ties the caches, cancellation registry, tile sources
// and the mesh generators into one handle that every entry point goes
// through. A convenience default instance serves single-tenant callers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb/maptile"
	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/cache"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/cancel"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/elevation"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/extrude"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/metrics"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/pipeline"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/terrain"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/tilesource"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/mesh"
)

// MaxVectorTiles bounds how many vector tiles one polygon request may
// fetch; larger requests return an empty result.
const MaxVectorTiles = 9

// Options configure a new engine. Nil sources disable the corresponding
// fetch paths; cached and caller-supplied data still work.
type Options struct {
	RasterSource tilesource.Source
	VectorSource tilesource.Source
	Logger       *zap.Logger
}

// Engine is the shared handle behind every operation.
type Engine struct {
	log     *zap.Logger
	caches  *cache.Manager
	cancels *cancel.Registry
	raster  tilesource.Source
	vector  tilesource.Source
}

func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:     log,
		caches:  cache.NewManager(log.Named("cache")),
		cancels: cancel.NewRegistry(),
	}
	if opts.RasterSource != nil {
		e.raster = tilesource.Dedupe(opts.RasterSource)
	}
	if opts.VectorSource != nil {
		e.vector = tilesource.Dedupe(opts.VectorSource)
	}
	return e
}

var std = New(Options{})

// Default returns the process-wide engine for single-tenant callers.
func Default() *Engine { return std }

// RegisterGroup creates the cache group if it does not exist yet.
func (e *Engine) RegisterGroup(id string) { e.caches.Group(id) }

// FreeGroup drops a group and all its cached state.
func (e *Engine) FreeGroup(id string) bool { return e.caches.Free(id) }

// ClearCaches empties every cache group.
func (e *Engine) ClearCaches() { e.caches.Clear("") }

// CacheStats snapshots all groups.
func (e *Engine) CacheStats() map[string]cache.GroupStats { return e.caches.Stats() }

// WithCancellation binds ctx to a string token; a later registration or
// CancelOperation with the same token aborts it.
func (e *Engine) WithCancellation(ctx context.Context, token string) (context.Context, func()) {
	return e.cancels.Register(ctx, token)
}

// CancelOperation aborts the job bound to token.
func (e *Engine) CancelOperation(token string) bool { return e.cancels.Cancel(token) }

func tileKey(t maptile.Tile) string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// groupProvider resolves raster tiles through one cache group, fetching
// and decoding on miss.
type groupProvider struct {
	e     *Engine
	group *cache.Group
}

func (p groupProvider) GetTile(ctx context.Context, t maptile.Tile) (*tilesource.RasterTile, bool, error) {
	key := tileKey(t)
	if tile, ok := p.group.GetRaster(key); ok {
		metrics.CacheLookups.WithLabelValues("raster", "hit").Inc()
		return tile, true, nil
	}
	metrics.CacheLookups.WithLabelValues("raster", "miss").Inc()

	if p.e.raster == nil {
		return nil, false, fmt.Errorf("%w: no raster tile source configured", ErrTransport)
	}
	data, err := p.e.raster.FetchTile(ctx, t)
	if err != nil {
		metrics.TileFetches.WithLabelValues("raster", "error").Inc()
		return nil, false, fmt.Errorf("%w: fetch %s: %v", ErrTransport, key, err)
	}
	metrics.TileFetches.WithLabelValues("raster", "ok").Inc()

	tile, err := tilesource.DecodeRaster(t, data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %v", ErrTransport, key, err)
	}
	p.group.PutRaster(key, tile)
	return tile, false, nil
}

// wrapCtxErr converts context errors into the cancelled kind.
func wrapCtxErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return err
}

// ElevationRequest asks for an assembled grid over a bbox. When Tiles is
// empty and Zoom is set, the covering tile set is derived from the bbox.
type ElevationRequest struct {
	BBox   geo.BBox
	GridW  int
	GridH  int
	Tiles  []maptile.Tile
	Zoom   maptile.Zoom
	Group  string
	Serial bool
	// Smooth applies the gaussian/percentile post-step to the stored grid.
	Smooth bool
}

// ProcessElevation assembles (or returns the cached) elevation grid for
// the request's bbox and publishes it under the bbox key.
func (e *Engine) ProcessElevation(ctx context.Context, req ElevationRequest) (*elevation.Result, error) {
	defer metrics.ObserveOp("elevation", time.Now())

	if !req.BBox.Valid() {
		return nil, fmt.Errorf("%w: bbox %+v", ErrInvalidInput, req.BBox)
	}
	group := e.caches.Group(req.Group)
	key := req.BBox.Key()

	if grid, ok := group.GetGrid(key); ok {
		metrics.CacheLookups.WithLabelValues("grid", "hit").Inc()
		lo, hi, _ := grid.Range()
		res := &elevation.Result{Grid: grid, Min: lo, Max: hi, CacheHitRate: 1}
		res.ProcessedMin, res.ProcessedMax = lo, hi
		if hi-lo < 1 {
			mid := (lo + hi) / 2
			res.ProcessedMin, res.ProcessedMax = mid-500, mid+500
		}
		return res, nil
	}
	metrics.CacheLookups.WithLabelValues("grid", "miss").Inc()

	tiles := req.Tiles
	if len(tiles) == 0 && req.Zoom > 0 {
		tiles = geo.CoverBBox(req.BBox, req.Zoom)
	}

	asm := elevation.NewAssembler(groupProvider{e: e, group: group}, e.log.Named("elevation"))
	res, err := asm.Assemble(ctx, elevation.AssembleParams{
		BBox:   req.BBox,
		GridW:  req.GridW,
		GridH:  req.GridH,
		Tiles:  tiles,
		Serial: req.Serial,
	})
	if err != nil {
		return nil, wrapCtxErr(err)
	}
	if req.Smooth {
		res.Grid = elevation.Smooth(res.Grid)
	}
	group.PutGrid(key, res.Grid)
	return res, nil
}

// TerrainRequest asks for a terrain box over a bbox.
type TerrainRequest struct {
	Elevation            ElevationRequest
	VerticalExaggeration float64
	BaseHeight           float64
	Resolution           int
}

// TerrainResult carries the box mesh plus the scene-space grid other
// geometry is seated on.
type TerrainResult struct {
	Mesh          *mesh.Buffers
	ProcessedGrid *elevation.Grid
	// ProcessedMin and ProcessedMax are the top-surface height range in
	// scene units; OriginalMin and OriginalMax the source elevations in
	// meters.
	ProcessedMin, ProcessedMax float64
	OriginalMin, OriginalMax   float64
	CacheHitRate               float64
}

// CreateTerrainGeometry assembles the elevation grid and generates the
// closed terrain box.
func (e *Engine) CreateTerrainGeometry(ctx context.Context, req TerrainRequest) (*TerrainResult, error) {
	defer metrics.ObserveOp("terrain", time.Now())

	res, err := e.ProcessElevation(ctx, req.Elevation)
	if err != nil {
		return nil, err
	}

	params := terrain.Params{
		VerticalExaggeration: req.VerticalExaggeration,
		BaseHeight:           req.BaseHeight,
		Resolution:           req.Resolution,
	}
	buf, stats, err := terrain.Generate(res.Grid, res.Min, res.Max, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return &TerrainResult{
		Mesh:          buf,
		ProcessedGrid: terrain.ProcessGrid(res.Grid, res.Min, res.Max, params),
		ProcessedMin:  stats.MinZ,
		ProcessedMax:  stats.MaxZ,
		OriginalMin:   res.Min,
		OriginalMax:   res.Max,
		CacheHitRate:  res.CacheHitRate,
	}, nil
}

// ExtrudeGeometry runs the standalone prism extruder.
func (e *Engine) ExtrudeGeometry(shapes []extrude.Shape, opts extrude.Options) (*mesh.Buffers, error) {
	defer metrics.ObserveOp("extrude", time.Now())

	if len(shapes) == 0 {
		return nil, fmt.Errorf("%w: no shapes", ErrInvalidInput)
	}
	buf := extrude.Extrude(shapes, opts)
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return buf, nil
}

// PolygonRequest is one vector layer to extrude over a bbox. Features
// may be supplied directly; otherwise they are fetched from the vector
// source at Zoom and decoded from Dataset.SourceLayer.
type PolygonRequest struct {
	BBox     geo.BBox
	Dataset  pipeline.Dataset
	Features []pipeline.Feature
	Zoom     maptile.Zoom
	Group    string
	// Grid is the scene-space terrain grid; when nil the group's cached
	// grid for the bbox key is used.
	Grid             *elevation.Grid
	MinElev, MaxElev float64
}

// ProcessPolygonGeometry extrudes one layer's features into a merged
// mesh seated on the terrain.
func (e *Engine) ProcessPolygonGeometry(ctx context.Context, req PolygonRequest) (*mesh.Buffers, error) {
	defer metrics.ObserveOp("polygons", time.Now())

	if !req.BBox.Valid() {
		return nil, fmt.Errorf("%w: bbox %+v", ErrInvalidInput, req.BBox)
	}
	group := e.caches.Group(req.Group)

	grid := req.Grid
	if grid == nil {
		cached, ok := group.GetGrid(req.BBox.Key())
		if !ok {
			return nil, fmt.Errorf("%w: no elevation grid supplied or cached for bbox", ErrInvalidInput)
		}
		grid = cached
	}

	features := req.Features
	if len(features) == 0 && e.vector != nil && req.Zoom > 0 {
		fetched, err := e.fetchFeatures(ctx, group, req.BBox, req.Zoom, req.Dataset.SourceLayer)
		if err != nil {
			return nil, err
		}
		if fetched == nil {
			// Tile budget exceeded; empty result by contract.
			return &mesh.Buffers{}, nil
		}
		features = fetched
	}

	buf, err := pipeline.Process(ctx, pipeline.Request{
		BBox:     req.BBox,
		Dataset:  req.Dataset,
		Features: features,
		Grid:     grid,
		MinElev:  req.MinElev,
		MaxElev:  req.MaxElev,
	}, e.log.Named("pipeline"))
	if err != nil {
		return nil, wrapCtxErr(err)
	}
	return buf, nil
}

// fetchFeatures resolves the covering vector tiles through the group
// cache and decodes the named layer. A nil, nil return means the tile
// budget was exceeded.
func (e *Engine) fetchFeatures(ctx context.Context, group *cache.Group, bbox geo.BBox, zoom maptile.Zoom, layer string) ([]pipeline.Feature, error) {
	tiles := geo.CoverBBox(bbox, zoom)
	if len(tiles) > MaxVectorTiles {
		e.log.Warn("vector tile budget exceeded",
			zap.Int("tiles", len(tiles)),
			zap.Int("budget", MaxVectorTiles),
			zap.String("bbox", bbox.Key()))
		return nil, nil
	}

	var features []pipeline.Feature
	for _, t := range tiles {
		if err := ctx.Err(); err != nil {
			return nil, wrapCtxErr(err)
		}
		key := tileKey(t)
		data, ok := group.GetVector(key)
		if ok {
			metrics.CacheLookups.WithLabelValues("vector", "hit").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("vector", "miss").Inc()
			var err error
			data, err = e.vector.FetchTile(ctx, t)
			if err != nil {
				metrics.TileFetches.WithLabelValues("vector", "error").Inc()
				e.log.Warn("vector tile fetch failed", zap.String("tile", key), zap.Error(err))
				continue
			}
			metrics.TileFetches.WithLabelValues("vector", "ok").Inc()
			group.PutVector(key, data)
		}

		decoded, err := pipeline.FeaturesFromTile(data, t, layer)
		if err != nil {
			e.log.Warn("vector tile decode failed", zap.String("tile", key), zap.Error(err))
			continue
		}
		features = append(features, decoded...)
	}
	return features, nil
}
