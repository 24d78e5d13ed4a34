package tilesource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb/maptile"
)

func TestRasterTileValidate(t *testing.T) {
	good := &RasterTile{Width: 2, Height: 2, Pixels: make([]byte, 16)}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	bad := &RasterTile{Width: 2, Height: 2, Pixels: make([]byte, 15)}
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted a short pixel buffer")
	}
}

func TestRasterTileAt(t *testing.T) {
	tile := &RasterTile{Width: 2, Height: 1, Pixels: []byte{
		1, 2, 3, 255,
		4, 5, 6, 0,
	}}
	if r, g, b, a := tile.At(0, 0); r != 1 || g != 2 || b != 3 || a != 255 {
		t.Errorf("At(0,0) = (%d, %d, %d, %d), want (1, 2, 3, 255)", r, g, b, a)
	}
	if _, _, _, a := tile.At(1, 0); a != 0 {
		t.Errorf("At(1,0) alpha = %d, want 0", a)
	}
	// Out of range returns the invalid pixel.
	if r, g, b, a := tile.At(-1, 0); r != 0 || g != 0 || b != 0 || a != 0 {
		t.Error("out-of-range pixel was not zero")
	}
	if _, _, _, a := tile.At(0, 5); a != 0 {
		t.Error("out-of-range row was not invalid")
	}
}

func TestDecodeRaster(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	id := maptile.New(1, 2, 3)
	tile, err := DecodeRaster(id, buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeRaster: %v", err)
	}
	if tile.Tile != id {
		t.Errorf("Tile = %v, want %v", tile.Tile, id)
	}
	if tile.Width != 4 || tile.Height != 4 {
		t.Errorf("size = %dx%d, want 4x4", tile.Width, tile.Height)
	}
	if r, g, b, a := tile.At(2, 2); r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("At(2,2) = (%d, %d, %d, %d), want (10, 20, 30, 255)", r, g, b, a)
	}
	if tile.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}
}

func TestDecodeRasterRejectsGarbage(t *testing.T) {
	if _, err := DecodeRaster(maptile.New(0, 0, 0), []byte("not an image")); err == nil {
		t.Error("garbage bytes decoded without error")
	}
}

func TestExpandURL(t *testing.T) {
	s := NewHTTPSource("https://{s}.tiles.example.com/{z}/{x}/{y}.png", []string{"a", "b"}, time.Second)
	tile := maptile.New(5, 7, 3)

	first := s.expandURL(tile)
	second := s.expandURL(tile)
	if first == second {
		t.Errorf("subdomain did not rotate: %q twice", first)
	}
	want := map[string]bool{
		"https://a.tiles.example.com/3/5/7.png": true,
		"https://b.tiles.example.com/3/5/7.png": true,
	}
	if !want[first] || !want[second] {
		t.Errorf("expanded urls %q, %q outside the expected set", first, second)
	}
}

func TestExpandURLNoSubdomains(t *testing.T) {
	s := NewHTTPSource("https://tiles.example.com/{z}/{x}/{y}.mvt", nil, time.Second)
	got := s.expandURL(maptile.New(1, 2, 4))
	want := "https://tiles.example.com/4/1/2.mvt"
	if got != want {
		t.Errorf("expandURL = %q, want %q", got, want)
	}
}

// countingSource blocks every fetch until release, counting the calls that
// actually reach it.
type countingSource struct {
	calls   atomic.Int64
	release chan struct{}
}

func (c *countingSource) FetchTile(ctx context.Context, t maptile.Tile) ([]byte, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return []byte{byte(t.X)}, nil
}

func TestDedupeSharesInflightFetch(t *testing.T) {
	src := &countingSource{release: make(chan struct{})}
	d := Dedupe(src)
	tile := maptile.New(0, 0, 0)

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := d.FetchTile(context.Background(), tile)
			if err != nil {
				t.Errorf("FetchTile: %v", err)
				return
			}
			results[i] = data
		}(i)
	}
	// Let the goroutines pile onto the single in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Errorf("inner fetches = %d, want 1", got)
	}
	for i, r := range results {
		if len(r) != 1 || r[0] != 0 {
			t.Errorf("worker %d result = %v, want [0]", i, r)
		}
	}
}

type failingInner struct{}

func (failingInner) FetchTile(context.Context, maptile.Tile) ([]byte, error) {
	return nil, errors.New("upstream down")
}

func TestDedupePropagatesError(t *testing.T) {
	d := Dedupe(failingInner{})
	if _, err := d.FetchTile(context.Background(), maptile.New(0, 0, 0)); err == nil {
		t.Error("inner error was swallowed")
	}
}

func TestDedupeNil(t *testing.T) {
	if d := Dedupe(nil); d != nil {
		t.Errorf("Dedupe(nil) = %v, want nil", d)
	}
}
