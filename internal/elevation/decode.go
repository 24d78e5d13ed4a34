// Package elevation decodes RGB-packed elevation rasters and assembles
// multi-tile mosaics into regular elevation grids.
package elevation

import (
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
)

// Decoded values outside this open interval are treated as encoding noise
// and discarded.
const (
	MinPlausible = -12000.0
	MaxPlausible = 12000.0
)

// DecodeRGB maps a packed RGB pixel to meters:
// -10000 + (r·65536 + g·256 + b) · 0.1.
func DecodeRGB(r, g, b uint8) float64 {
	return -10000.0 + (float64(r)*65536.0+float64(g)*256.0+float64(b))*0.1
}

// Plausible reports whether a decoded value is finite and within the
// accepted elevation band.
func Plausible(e float64) bool {
	return math.IsFinite(e) && e > MinPlausible && e < MaxPlausible
}
