package elevation

import (
	"context"
	"errors"
	gomath "math"
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/tilesource"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
)

// stubProvider serves pre-built raster tiles, or a fixed error when the
// tile is unknown.
type stubProvider struct {
	tiles map[maptile.Tile]*tilesource.RasterTile
	hit   bool
}

func (s *stubProvider) GetTile(_ context.Context, t maptile.Tile) (*tilesource.RasterTile, bool, error) {
	tile, ok := s.tiles[t]
	if !ok {
		return nil, false, errors.New("tile unavailable")
	}
	return tile, s.hit, nil
}

// uniformTile builds a size×size tile with every pixel set to (r, g, b)
// at full opacity.
func uniformTile(t *testing.T, id maptile.Tile, size int, r, g, b, a uint8) *tilesource.RasterTile {
	t.Helper()
	pixels := make([]byte, size*size*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = r
		pixels[i+1] = g
		pixels[i+2] = b
		pixels[i+3] = a
	}
	tile, err := tilesource.NewRasterTile(id, size, size, pixels)
	if err != nil {
		t.Fatalf("NewRasterTile: %v", err)
	}
	return tile
}

func worldRequest(tiles []maptile.Tile, serial bool) AssembleParams {
	return AssembleParams{
		BBox:   geo.TileBBox(maptile.New(0, 0, 0)),
		GridW:  100,
		GridH:  100,
		Tiles:  tiles,
		Serial: serial,
	}
}

func TestAssembleSerialUniform(t *testing.T) {
	id := maptile.New(0, 0, 0)
	// (1, 0x86, 0xA0) decodes to exactly 0 m.
	prov := &stubProvider{tiles: map[maptile.Tile]*tilesource.RasterTile{
		id: uniformTile(t, id, 16, 1, 0x86, 0xA0, 255),
	}}
	a := NewAssembler(prov, nil)

	res, err := a.Assemble(context.Background(), worldRequest([]maptile.Tile{id}, true))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Synthetic {
		t.Fatal("uniform tile produced a synthetic result")
	}
	if res.Min != 0 || res.Max != 0 {
		t.Errorf("raw range = (%v, %v), want (0, 0)", res.Min, res.Max)
	}
	// A flat surface gets the widened display range.
	if res.ProcessedMin != -500 || res.ProcessedMax != 500 {
		t.Errorf("processed range = (%v, %v), want (-500, 500)", res.ProcessedMin, res.ProcessedMax)
	}
	if err := res.Grid.Validate(); err != nil {
		t.Fatalf("assembled grid invalid after gap fill: %v", err)
	}
	for i, v := range res.Grid.Cells {
		if v != 0 {
			t.Fatalf("cell %d = %v, want 0", i, v)
		}
	}
}

func TestAssembleBlendUniform(t *testing.T) {
	id := maptile.New(0, 0, 0)
	prov := &stubProvider{tiles: map[maptile.Tile]*tilesource.RasterTile{
		id: uniformTile(t, id, 16, 1, 0x86, 0xA0, 255),
	}}
	a := NewAssembler(prov, nil)

	res, err := a.Assemble(context.Background(), worldRequest([]maptile.Tile{id}, false))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Synthetic {
		t.Fatal("uniform tile produced a synthetic result")
	}
	for i, v := range res.Grid.Cells {
		if gomath.Abs(v) > 1e-9 {
			t.Fatalf("cell %d = %v, want 0", i, v)
		}
	}
}

func TestAssembleAllFetchesFail(t *testing.T) {
	prov := &stubProvider{}
	a := NewAssembler(prov, nil)

	res, err := a.Assemble(context.Background(), worldRequest([]maptile.Tile{maptile.New(0, 0, 0)}, true))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !res.Synthetic {
		t.Fatal("expected the synthetic fallback surface")
	}
	if res.Min != FallbackMin || res.Max != FallbackMax {
		t.Errorf("fallback range = (%v, %v), want (%v, %v)", res.Min, res.Max, FallbackMin, FallbackMax)
	}
	g := res.Grid
	if got := g.At(0, 0); got != 0 {
		t.Errorf("ramp origin = %v, want 0", got)
	}
	want := float64(g.W-1) / float64(g.W) * float64(g.H-1) / float64(g.H) * 500.0
	if got := g.At(g.W-1, g.H-1); gomath.Abs(got-want) > 1e-9 {
		t.Errorf("ramp corner = %v, want %v", got, want)
	}
}

func TestAssembleTransparentPixelsIgnored(t *testing.T) {
	id := maptile.New(0, 0, 0)
	prov := &stubProvider{tiles: map[maptile.Tile]*tilesource.RasterTile{
		id: uniformTile(t, id, 16, 1, 0x86, 0xA0, 0),
	}}
	a := NewAssembler(prov, nil)

	res, err := a.Assemble(context.Background(), worldRequest([]maptile.Tile{id}, true))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !res.Synthetic {
		t.Error("fully transparent tile should fall back to the synthetic surface")
	}
}

func TestAssembleCacheHitRate(t *testing.T) {
	id := maptile.New(0, 0, 0)
	prov := &stubProvider{
		tiles: map[maptile.Tile]*tilesource.RasterTile{
			id: uniformTile(t, id, 16, 1, 0x86, 0xA0, 255),
		},
		hit: true,
	}
	a := NewAssembler(prov, nil)

	res, err := a.Assemble(context.Background(), worldRequest([]maptile.Tile{id}, true))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.CacheHitRate != 1 {
		t.Errorf("CacheHitRate = %v, want 1", res.CacheHitRate)
	}
}

func TestAssembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAssembler(&stubProvider{}, nil)
	if _, err := a.Assemble(ctx, worldRequest(nil, true)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAssembleClampsGridSize(t *testing.T) {
	a := NewAssembler(&stubProvider{}, nil)
	res, err := a.Assemble(context.Background(), AssembleParams{
		BBox:  geo.TileBBox(maptile.New(0, 0, 0)),
		GridW: 10,
		GridH: 5000,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Grid.W != MinGridSize || res.Grid.H != MaxGridSize {
		t.Errorf("grid size = %dx%d, want %dx%d", res.Grid.W, res.Grid.H, MinGridSize, MaxGridSize)
	}
}

func TestFillGaps(t *testing.T) {
	g := NewGrid(3, 3, 2)
	g.Set(1, 1, gomath.NaN())
	fillGaps(g, 0, 4)
	if got := g.At(1, 1); got != 2 {
		t.Errorf("filled cell = %v, want neighbor average 2", got)
	}

	// A grid too empty for ring averaging falls back to the midpoint.
	empty := NewGrid(3, 3, gomath.NaN())
	fillGaps(empty, 10, 30)
	if got := empty.At(1, 1); got != 20 {
		t.Errorf("isolated cell = %v, want midpoint 20", got)
	}
}

func TestWidenDegenerate(t *testing.T) {
	tests := []struct {
		name           string
		lo, hi         float64
		wantLo, wantHi float64
	}{
		{"wide range untouched", 100, 900, 100, 900},
		{"exactly one meter untouched", 10, 11, 10, 11},
		{"flat widened", 250, 250, -250, 750},
		{"sub-meter widened", 100, 100.5, -399.75, 600.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := widenDegenerate(tt.lo, tt.hi)
			if gomath.Abs(lo-tt.wantLo) > 1e-9 || gomath.Abs(hi-tt.wantHi) > 1e-9 {
				t.Errorf("widenDegenerate(%v, %v) = (%v, %v), want (%v, %v)",
					tt.lo, tt.hi, lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}
