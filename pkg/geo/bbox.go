// Package geo provides geographic primitives for the tile pipeline:
// bounding boxes, Web-Mercator tile math, polygon predicates and clipping.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// BBox is an axis-aligned geographic rectangle in WGS84 degrees.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// NewBBox returns a BBox, swapping coordinates if they arrive inverted.
func NewBBox(minLng, minLat, maxLng, maxLat float64) BBox {
	if minLng > maxLng {
		minLng, maxLng = maxLng, minLng
	}
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	return BBox{MinLng: minLng, MinLat: minLat, MaxLng: maxLng, MaxLat: maxLat}
}

// BBoxFromBound converts an orb.Bound.
func BBoxFromBound(b orb.Bound) BBox {
	return BBox{MinLng: b.Min.Lon(), MinLat: b.Min.Lat(), MaxLng: b.Max.Lon(), MaxLat: b.Max.Lat()}
}

// Bound converts to an orb.Bound.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLng, b.MinLat}, Max: orb.Point{b.MaxLng, b.MaxLat}}
}

// Valid reports whether the box is ordered and within world limits.
func (b BBox) Valid() bool {
	return b.MinLng <= b.MaxLng && b.MinLat <= b.MaxLat &&
		b.MinLng >= -180 && b.MaxLng <= 180 && b.MinLat >= -90 && b.MaxLat <= 90
}

// Width returns the longitude span in degrees.
func (b BBox) Width() float64 { return b.MaxLng - b.MinLng }

// Height returns the latitude span in degrees.
func (b BBox) Height() float64 { return b.MaxLat - b.MinLat }

// Center returns the box center.
func (b BBox) Center() (lng, lat float64) {
	return (b.MinLng + b.MaxLng) / 2, (b.MinLat + b.MaxLat) / 2
}

// Contains reports whether p lies inside the box, edges inclusive.
func (b BBox) Contains(p orb.Point) bool {
	return p.Lon() >= b.MinLng && p.Lon() <= b.MaxLng &&
		p.Lat() >= b.MinLat && p.Lat() <= b.MaxLat
}

// Intersects reports whether two boxes overlap, edges inclusive.
func (b BBox) Intersects(o BBox) bool {
	return b.MinLng <= o.MaxLng && b.MaxLng >= o.MinLng &&
		b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat
}

// Expand grows the box by pad degrees on every side.
func (b BBox) Expand(pad float64) BBox {
	return BBox{
		MinLng: b.MinLng - pad, MinLat: b.MinLat - pad,
		MaxLng: b.MaxLng + pad, MaxLat: b.MaxLat + pad,
	}
}

// Key returns the stable cache key "{min_lng}_{min_lat}_{max_lng}_{max_lat}".
// Formatting uses the shortest decimal round-trip form so equality is textual.
func (b BBox) Key() string {
	return fmtCoord(b.MinLng) + "_" + fmtCoord(b.MinLat) + "_" +
		fmtCoord(b.MaxLng) + "_" + fmtCoord(b.MaxLat)
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseKey inverts Key.
func ParseKey(key string) (BBox, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox key %q: want 4 fields, got %d", key, len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox key %q: %w", key, err)
		}
		vals[i] = v
	}
	return BBox{MinLng: vals[0], MinLat: vals[1], MaxLng: vals[2], MaxLat: vals[3]}, nil
}

// Normalize maps p into [0,1]² relative to the box. Values outside the box
// fall outside [0,1].
func (b BBox) Normalize(p orb.Point) (u, v float64) {
	w, h := b.Width(), b.Height()
	if w == 0 {
		w = 1e-12
	}
	if h == 0 {
		h = 1e-12
	}
	return (p.Lon() - b.MinLng) / w, (p.Lat() - b.MinLat) / h
}
