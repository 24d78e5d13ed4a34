package geo

import (
	gomath "math"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestTileLatInverse(t *testing.T) {
	// Mapping a latitude to a tile row and back must land within one
	// tile's latitude span, for every zoom.
	lats := []float64{-84, -45.5, -1, 0, 0.001, 33.3, 60, 84}
	for z := maptile.Zoom(0); z <= 22; z++ {
		for _, lat := range lats {
			y := LatToTileY(lat, z)
			got := TileYToLat(y, z)

			span := gomath.Abs(TileYToLat(gomath.Floor(y), z) - TileYToLat(gomath.Floor(y)+1, z))
			if gomath.Abs(got-lat) > span+1e-9 {
				t.Fatalf("z=%d lat=%v: inverse %v off by more than a tile span %v", z, lat, got, span)
			}
		}
	}
}

func TestTileLngInverse(t *testing.T) {
	for z := maptile.Zoom(0); z <= 22; z++ {
		for _, lng := range []float64{-179, -90, 0, 45.25, 179} {
			got := TileXToLng(LngToTileX(lng, z), z)
			if gomath.Abs(got-lng) > 1e-6 {
				t.Fatalf("z=%d lng=%v: inverse = %v", z, lng, got)
			}
		}
	}
}

func TestTileBBoxContainsCenter(t *testing.T) {
	tile := TileAt(11.57, 48.14, 14)
	b := TileBBox(tile)
	if !(11.57 >= b.MinLng && 11.57 <= b.MaxLng) || !(48.14 >= b.MinLat && 48.14 <= b.MaxLat) {
		t.Errorf("tile bbox %+v does not contain the source point", b)
	}
}

func TestCoverBBox(t *testing.T) {
	// The whole world at z=1 is the full 2x2 pyramid level.
	world := NewBBox(-180, -MaxMercatorLat, 180, MaxMercatorLat)
	tiles := CoverBBox(world, 1)
	if len(tiles) != 4 {
		t.Fatalf("world cover at z=1 = %d tiles, want 4", len(tiles))
	}

	// A single tile's bbox covers itself (shrunk to dodge edge overlap).
	tile := maptile.New(8717, 5683, 14)
	tb := TileBBox(tile).Expand(-1e-9)
	cover := CoverBBox(tb, 14)
	if len(cover) != 1 || cover[0] != tile {
		t.Errorf("self cover = %v, want [%v]", cover, tile)
	}

	// Every covering tile intersects the bbox.
	b := NewBBox(11.4, 48.05, 11.7, 48.25)
	for _, tl := range CoverBBox(b, 12) {
		if !TileBBox(tl).Intersects(b) {
			t.Errorf("cover tile %v does not intersect the bbox", tl)
		}
	}
}
