package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Latitude limits of the Web-Mercator projection.
const (
	MaxMercatorLat = 85.05112878
	MinMercatorLat = -85.05112878
)

// LngToTileX returns the continuous tile X coordinate at zoom z.
func LngToTileX(lng float64, z maptile.Zoom) float64 {
	return (lng + 180.0) / 360.0 * math.Exp2(float64(z))
}

// LatToTileY returns the continuous tile Y coordinate at zoom z.
func LatToTileY(lat float64, z maptile.Zoom) float64 {
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	}
	if lat < MinMercatorLat {
		lat = MinMercatorLat
	}
	rad := lat * math.Pi / 180.0
	return (1.0 - math.Log(math.Tan(rad)+1.0/math.Cos(rad))/math.Pi) / 2.0 * math.Exp2(float64(z))
}

// TileXToLng returns the longitude of the western edge of tile column x.
func TileXToLng(x float64, z maptile.Zoom) float64 {
	return x/math.Exp2(float64(z))*360.0 - 180.0
}

// TileYToLat returns the latitude of the northern edge of tile row y.
func TileYToLat(y float64, z maptile.Zoom) float64 {
	n := math.Pi * (1.0 - 2.0*y/math.Exp2(float64(z)))
	return math.Atan(math.Sinh(n)) * 180.0 / math.Pi
}

// TileAt returns the tile containing the given point.
func TileAt(lng, lat float64, z maptile.Zoom) maptile.Tile {
	return maptile.At(orb.Point{lng, lat}, z)
}

// TileBBox returns the geographic bounds of a tile. North is MaxLat.
func TileBBox(t maptile.Tile) BBox {
	return BBoxFromBound(t.Bound())
}

// CoverBBox lists every tile at zoom z that overlaps the box, row-major
// from the north-west corner.
func CoverBBox(b BBox, z maptile.Zoom) []maptile.Tile {
	if !b.Valid() {
		return nil
	}
	n := uint32(1) << z
	clampTile := func(v float64) uint32 {
		if v < 0 {
			return 0
		}
		if v >= float64(n) {
			return n - 1
		}
		return uint32(v)
	}
	minX := clampTile(math.Floor(LngToTileX(b.MinLng, z)))
	maxX := clampTile(math.Floor(LngToTileX(b.MaxLng, z)))
	minY := clampTile(math.Floor(LatToTileY(b.MaxLat, z))) // north edge has the smaller Y
	maxY := clampTile(math.Floor(LatToTileY(b.MinLat, z)))

	tiles := make([]maptile.Tile, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tiles = append(tiles, maptile.New(x, y, z))
		}
	}
	return tiles
}
