// Package tilesource fetches raster and vector map tiles from remote or
// local providers and decodes raster tiles into RGBA pixel grids.
package tilesource

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb/maptile"
)

// Source delivers the raw bytes of one tile. Raster sources return encoded
// images (png/jpeg/webp), vector sources return MVT protobuf bytes;
// interpretation is the caller's.
type Source interface {
	FetchTile(ctx context.Context, t maptile.Tile) ([]byte, error)
}

// RasterTile is a decoded RGBA tile. The alpha channel is a validity mask:
// zero alpha marks pixels that carry no sample.
type RasterTile struct {
	Tile      maptile.Tile
	Width     int
	Height    int
	Pixels    []byte // RGBA, 4*Width*Height bytes
	FetchedAt time.Time
}

// Validate checks the pixel buffer length invariant.
func (t *RasterTile) Validate() error {
	if want := 4 * t.Width * t.Height; len(t.Pixels) != want {
		return fmt.Errorf("tile %v: pixel buffer %d bytes, want %d", t.Tile, len(t.Pixels), want)
	}
	return nil
}

// At returns the RGBA components of pixel (x, y). Out-of-range coordinates
// return a zero (invalid) pixel.
func (t *RasterTile) At(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return 0, 0, 0, 0
	}
	i := 4 * (y*t.Width + x)
	return t.Pixels[i], t.Pixels[i+1], t.Pixels[i+2], t.Pixels[i+3]
}
