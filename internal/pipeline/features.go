package pipeline

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// Feature is one map feature in geographic coordinates. Exactly one of
// Polygon or Line is set.
type Feature struct {
	Polygon orb.Polygon
	Line    orb.LineString
	Props   geojson.Properties
}

// FeaturesFromTile decodes a binary vector tile and returns the features
// of the named layer projected to lng/lat. Multi-geometries are split
// into one Feature per part; point layers yield nothing.
func FeaturesFromTile(data []byte, t maptile.Tile, layerName string) ([]Feature, error) {
	layers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decode vector tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	layers.ProjectToWGS84(t)

	var out []Feature
	for _, layer := range layers {
		if layer.Name != layerName {
			continue
		}
		for _, f := range layer.Features {
			out = append(out, splitGeometry(f.Geometry, f.Properties)...)
		}
	}
	return out, nil
}

func splitGeometry(g orb.Geometry, props geojson.Properties) []Feature {
	switch geom := g.(type) {
	case orb.Polygon:
		return []Feature{{Polygon: geom, Props: props}}
	case orb.MultiPolygon:
		out := make([]Feature, 0, len(geom))
		for _, p := range geom {
			out = append(out, Feature{Polygon: p, Props: props})
		}
		return out
	case orb.LineString:
		return []Feature{{Line: geom, Props: props}}
	case orb.MultiLineString:
		out := make([]Feature, 0, len(geom))
		for _, l := range geom {
			out = append(out, Feature{Line: l, Props: props})
		}
		return out
	}
	return nil
}

// propFloat reads a numeric property, reporting whether it was present
// and numeric.
func propFloat(props geojson.Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
