package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/elevation"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/engine"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/extrude"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/pipeline"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/mesh"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/threemf"
)

func isKind(err, kind error) bool { return errors.Is(err, kind) }

// bboxJSON is [min_lng, min_lat, max_lng, max_lat].
type bboxJSON [4]float64

func (b bboxJSON) toBBox() geo.BBox { return geo.NewBBox(b[0], b[1], b[2], b[3]) }

func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", engine.ErrInvalidInput, err))
		return false
	}
	return true
}

type elevationRequest struct {
	BBox        bboxJSON `json:"bbox" binding:"required"`
	GridWidth   int      `json:"grid_width"`
	GridHeight  int      `json:"grid_height"`
	Zoom        int      `json:"zoom"`
	Group       string   `json:"group"`
	Serial      bool     `json:"serial"`
	Smooth      bool     `json:"smooth"`
	CancelToken string   `json:"cancel_token"`
}

type elevationResponse struct {
	GridWidth    int       `json:"grid_width"`
	GridHeight   int       `json:"grid_height"`
	Cells        []float64 `json:"elevation_grid"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	ProcessedMin float64   `json:"processed_min"`
	ProcessedMax float64   `json:"processed_max"`
	CacheHitRate float64   `json:"cache_hit_rate"`
	Synthetic    bool      `json:"synthetic,omitempty"`
}

func (s *Server) handleElevation(c *gin.Context) {
	var req elevationRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ctx, release := s.eng.WithCancellation(c.Request.Context(), req.CancelToken)
	defer release()

	res, err := s.eng.ProcessElevation(ctx, engine.ElevationRequest{
		BBox:   req.BBox.toBBox(),
		GridW:  req.GridWidth,
		GridH:  req.GridHeight,
		Zoom:   maptile.Zoom(req.Zoom),
		Group:  req.Group,
		Serial: req.Serial,
		Smooth: req.Smooth,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, elevationResponse{
		GridWidth:    res.Grid.W,
		GridHeight:   res.Grid.H,
		Cells:        res.Grid.Cells,
		Min:          res.Min,
		Max:          res.Max,
		ProcessedMin: res.ProcessedMin,
		ProcessedMax: res.ProcessedMax,
		CacheHitRate: res.CacheHitRate,
		Synthetic:    res.Synthetic,
	})
}

type terrainRequest struct {
	elevationRequest
	VerticalExaggeration float64 `json:"vertical_exaggeration"`
	TerrainBaseHeight    float64 `json:"terrain_base_height"`
	Resolution           int     `json:"resolution"`
}

type terrainResponse struct {
	Mesh         *mesh.Buffers `json:"mesh"`
	ProcessedMin float64       `json:"processed_min"`
	ProcessedMax float64       `json:"processed_max"`
	OriginalMin  float64       `json:"original_min"`
	OriginalMax  float64       `json:"original_max"`
	CacheHitRate float64       `json:"cache_hit_rate"`
}

func (s *Server) handleTerrain(c *gin.Context) {
	var req terrainRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ctx, release := s.eng.WithCancellation(c.Request.Context(), req.CancelToken)
	defer release()

	res, err := s.eng.CreateTerrainGeometry(ctx, engine.TerrainRequest{
		Elevation: engine.ElevationRequest{
			BBox:   req.BBox.toBBox(),
			GridW:  req.GridWidth,
			GridH:  req.GridHeight,
			Zoom:   maptile.Zoom(req.Zoom),
			Group:  req.Group,
			Serial: req.Serial,
			Smooth: req.Smooth,
		},
		VerticalExaggeration: req.VerticalExaggeration,
		BaseHeight:           req.TerrainBaseHeight,
		Resolution:           req.Resolution,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, terrainResponse{
		Mesh:         res.Mesh,
		ProcessedMin: res.ProcessedMin,
		ProcessedMax: res.ProcessedMax,
		OriginalMin:  res.OriginalMin,
		OriginalMax:  res.OriginalMax,
		CacheHitRate: res.CacheHitRate,
	})
}

type shapeJSON struct {
	Contour [][2]float64   `json:"contour" binding:"required"`
	Holes   [][][2]float64 `json:"holes"`
}

func (sj shapeJSON) toShape() extrude.Shape {
	out := extrude.Shape{Contour: toRing(sj.Contour)}
	for _, h := range sj.Holes {
		out.Holes = append(out.Holes, toRing(h))
	}
	return out
}

func toRing(pts [][2]float64) orb.Ring {
	r := make(orb.Ring, len(pts))
	for i, p := range pts {
		r[i] = orb.Point{p[0], p[1]}
	}
	return r
}

type extrudeRequest struct {
	Shapes         []shapeJSON `json:"shapes" binding:"required"`
	Depth          float64     `json:"depth"`
	Steps          int         `json:"steps"`
	SkipBottomFace bool        `json:"skip_bottom_face"`
}

func (s *Server) handleExtrude(c *gin.Context) {
	var req extrudeRequest
	if !s.bindJSON(c, &req) {
		return
	}
	shapes := make([]extrude.Shape, len(req.Shapes))
	for i, sj := range req.Shapes {
		shapes[i] = sj.toShape()
	}
	buf, err := s.eng.ExtrudeGeometry(shapes, extrude.Options{
		Depth:          req.Depth,
		Steps:          req.Steps,
		SkipBottomFace: req.SkipBottomFace,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buf)
}

type polygonFeatureJSON struct {
	Rings  [][][2]float64 `json:"rings" binding:"required"`
	Height *float64       `json:"height"`
}

type polygonsRequest struct {
	BBox        bboxJSON             `json:"bbox" binding:"required"`
	Dataset     pipeline.Dataset     `json:"dataset"`
	Polygons    []polygonFeatureJSON `json:"polygons"`
	Zoom        int                  `json:"zoom"`
	Group       string               `json:"group"`
	MinElev     float64              `json:"min_elev"`
	MaxElev     float64              `json:"max_elev"`
	Grid        []float64            `json:"elevation_grid"`
	GridWidth   int                  `json:"grid_width"`
	GridHeight  int                  `json:"grid_height"`
	CancelToken string               `json:"cancel_token"`
}

func (s *Server) handlePolygons(c *gin.Context) {
	var req polygonsRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ctx, release := s.eng.WithCancellation(c.Request.Context(), req.CancelToken)
	defer release()

	var grid *elevation.Grid
	if len(req.Grid) > 0 {
		if req.GridWidth*req.GridHeight != len(req.Grid) {
			s.fail(c, fmt.Errorf("%w: grid size %dx%d does not match %d cells",
				engine.ErrInvalidInput, req.GridWidth, req.GridHeight, len(req.Grid)))
			return
		}
		grid = &elevation.Grid{W: req.GridWidth, H: req.GridHeight, Cells: req.Grid}
	}

	var features []pipeline.Feature
	for _, p := range req.Polygons {
		if len(p.Rings) == 0 {
			continue
		}
		poly := make(orb.Polygon, len(p.Rings))
		for i, r := range p.Rings {
			poly[i] = toRing(r)
		}
		f := pipeline.Feature{Polygon: poly, Props: geojson.Properties{}}
		if p.Height != nil {
			f.Props["height"] = *p.Height
		}
		features = append(features, f)
	}

	buf, err := s.eng.ProcessPolygonGeometry(ctx, engine.PolygonRequest{
		BBox:     req.BBox.toBBox(),
		Dataset:  req.Dataset,
		Features: features,
		Zoom:     maptile.Zoom(req.Zoom),
		Group:    req.Group,
		Grid:     grid,
		MinElev:  req.MinElev,
		MaxElev:  req.MaxElev,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buf)
}

type exportMeshJSON struct {
	Name     string    `json:"name"`
	Vertices []float32 `json:"vertices" binding:"required"`
	Indices  []uint32  `json:"indices" binding:"required"`
}

type exportRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Meshes      []exportMeshJSON `json:"meshes" binding:"required"`
}

func (s *Server) handleExport3MF(c *gin.Context) {
	var req exportRequest
	if !s.bindJSON(c, &req) {
		return
	}
	model := &threemf.Model{Title: req.Title, Description: req.Description}
	for _, m := range req.Meshes {
		model.Meshes = append(model.Meshes, threemf.Mesh{
			Name:     m.Name,
			Vertices: m.Vertices,
			Indices:  m.Indices,
		})
	}

	var buf bytes.Buffer
	if err := threemf.WritePackage(&buf, model); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", engine.ErrInternal, err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="model.3mf"`)
	c.Data(http.StatusOK, "model/3mf", buf.Bytes())
}

func (s *Server) handleRegisterGroup(c *gin.Context) {
	s.eng.RegisterGroup(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"registered": c.Param("id")})
}

func (s *Server) handleFreeGroup(c *gin.Context) {
	freed := s.eng.FreeGroup(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"freed": freed})
}

func (s *Server) handleClearCaches(c *gin.Context) {
	s.eng.ClearCaches()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.CacheStats())
}

func (s *Server) handleCancel(c *gin.Context) {
	cancelled := s.eng.CancelOperation(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}
