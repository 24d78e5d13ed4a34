package tilesource

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/singleflight"
)

// Deduped wraps a Source so that concurrent fetches of the same tile share
// one in-flight request instead of hammering the provider.
type Deduped struct {
	inner Source
	group singleflight.Group
}

// Dedupe wraps src. A nil src is returned unchanged.
func Dedupe(src Source) *Deduped {
	if src == nil {
		return nil
	}
	return &Deduped{inner: src}
}

// FetchTile implements Source.
func (d *Deduped) FetchTile(ctx context.Context, t maptile.Tile) ([]byte, error) {
	key := fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
	v, err, _ := d.group.Do(key, func() (any, error) {
		return d.inner.FetchTile(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
