package mesh

import (
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
)

// Normal fallbacks for degenerate accumulation results.
var (
	upNormal   = math.Vec3{X: 0, Y: 0, Z: 1}
	downNormal = math.Vec3{X: 0, Y: 0, Z: -1}
)

// Up returns the +Z fallback normal.
func Up() math.Vec3 { return upNormal }

// Down returns the -Z fallback normal.
func Down() math.Vec3 { return downNormal }
