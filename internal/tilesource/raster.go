package tilesource

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/paulmach/orb/maptile"
	_ "golang.org/x/image/webp"
)

// DecodeRaster decodes encoded image bytes (png, jpeg or webp) into an
// RGBA tile stamped with the current time.
func DecodeRaster(t maptile.Tile, data []byte) (*RasterTile, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	tile := &RasterTile{
		Tile:      t,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Pixels:    rgba.Pix,
		FetchedAt: time.Now(),
	}
	if err := tile.Validate(); err != nil {
		return nil, err
	}
	return tile, nil
}

// NewRasterTile wraps a raw RGBA buffer, validating its length.
func NewRasterTile(t maptile.Tile, width, height int, pixels []byte) (*RasterTile, error) {
	tile := &RasterTile{
		Tile:      t,
		Width:     width,
		Height:    height,
		Pixels:    pixels,
		FetchedAt: time.Now(),
	}
	if err := tile.Validate(); err != nil {
		return nil, err
	}
	return tile, nil
}
