// Package cache holds per-group caches for raster tiles, vector tiles
// and assembled elevation grids. Groups isolate concurrent clients so
// one caller freeing its state cannot evict another's tiles.
package cache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/elevation"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/tilesource"
)

const (
	// RasterCap bounds raster tiles per group, evicting the tile with the
	// oldest fetch time first.
	RasterCap = 200
	// VectorCap bounds vector tiles per group, evicting in insertion order.
	VectorCap = 100
)

// counters tracks lookups for one cache kind.
type counters struct {
	hits   uint64
	misses uint64
}

func (c *counters) rate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// Group is the cache state of a single client group. All methods are
// safe for concurrent use.
type Group struct {
	mu sync.Mutex

	raster      map[string]*tilesource.RasterTile
	vector      map[string][]byte
	vectorOrder []string
	grids       map[string]*elevation.Grid

	rasterStats counters
	vectorStats counters
	gridStats   counters
}

func newGroup() *Group {
	return &Group{
		raster: make(map[string]*tilesource.RasterTile),
		vector: make(map[string][]byte),
		grids:  make(map[string]*elevation.Grid),
	}
}

// GetRaster returns the cached raster tile for key, counting the lookup.
func (g *Group) GetRaster(key string) (*tilesource.RasterTile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.raster[key]
	if ok {
		g.rasterStats.hits++
	} else {
		g.rasterStats.misses++
	}
	return t, ok
}

// PutRaster stores a raster tile, evicting the oldest-fetched entry when
// the group is full.
func (g *Group) PutRaster(key string, t *tilesource.RasterTile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.raster[key]; !exists && len(g.raster) >= RasterCap {
		oldestKey := ""
		for k, v := range g.raster {
			if oldestKey == "" || v.FetchedAt.Before(g.raster[oldestKey].FetchedAt) {
				oldestKey = k
			}
		}
		delete(g.raster, oldestKey)
	}
	g.raster[key] = t
}

// GetVector returns the cached vector tile bytes for key.
func (g *Group) GetVector(key string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.vector[key]
	if ok {
		g.vectorStats.hits++
	} else {
		g.vectorStats.misses++
	}
	return data, ok
}

// PutVector stores vector tile bytes, evicting the earliest insertion
// when the group is full.
func (g *Group) PutVector(key string, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.vector[key]; exists {
		g.vector[key] = data
		return
	}
	if len(g.vector) >= VectorCap && len(g.vectorOrder) > 0 {
		delete(g.vector, g.vectorOrder[0])
		g.vectorOrder = g.vectorOrder[1:]
	}
	g.vector[key] = data
	g.vectorOrder = append(g.vectorOrder, key)
}

// GetGrid returns the cached elevation grid for key.
func (g *Group) GetGrid(key string) (*elevation.Grid, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	grid, ok := g.grids[key]
	if ok {
		g.gridStats.hits++
	} else {
		g.gridStats.misses++
	}
	return grid, ok
}

// PutGrid stores an elevation grid. Grids are never evicted; they live
// until the group is cleared or freed.
func (g *Group) PutGrid(key string, grid *elevation.Grid) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grids[key] = grid
}

// Clear drops all cached entries but keeps the lookup counters.
func (g *Group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raster = make(map[string]*tilesource.RasterTile)
	g.vector = make(map[string][]byte)
	g.vectorOrder = nil
	g.grids = make(map[string]*elevation.Grid)
}

// KindStats describe one cache kind of one group.
type KindStats struct {
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// GroupStats is the stats snapshot of one group.
type GroupStats struct {
	Raster KindStats `json:"raster_tiles"`
	Vector KindStats `json:"vector_tiles"`
	Grids  KindStats `json:"elevation_grids"`
}

// Stats returns a consistent snapshot of the group's cache state.
func (g *Group) Stats() GroupStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GroupStats{
		Raster: KindStats{
			Entries: len(g.raster),
			Hits:    g.rasterStats.hits,
			Misses:  g.rasterStats.misses,
			HitRate: g.rasterStats.rate(),
		},
		Vector: KindStats{
			Entries: len(g.vector),
			Hits:    g.vectorStats.hits,
			Misses:  g.vectorStats.misses,
			HitRate: g.vectorStats.rate(),
		},
		Grids: KindStats{
			Entries: len(g.grids),
			Hits:    g.gridStats.hits,
			Misses:  g.gridStats.misses,
			HitRate: g.gridStats.rate(),
		},
	}
}

// Manager owns the group registry.
type Manager struct {
	mu     sync.Mutex
	groups map[string]*Group
	log    *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{groups: make(map[string]*Group), log: log}
}

// Group returns the cache group for id, creating it on first use.
func (m *Manager) Group(id string) *Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		g = newGroup()
		m.groups[id] = g
		m.log.Debug("cache group registered", zap.String("group", id))
	}
	return g
}

// Free removes a group and everything it caches. It reports whether the
// group existed.
func (m *Manager) Free(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return false
	}
	delete(m.groups, id)
	m.log.Debug("cache group freed", zap.String("group", id))
	return true
}

// Clear empties the named group, or every group when id is empty.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		for _, g := range m.groups {
			g.Clear()
		}
		return
	}
	if g, ok := m.groups[id]; ok {
		g.Clear()
	}
}

// Stats snapshots every registered group.
func (m *Manager) Stats() map[string]GroupStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]GroupStats, len(m.groups))
	for id, g := range m.groups {
		out[id] = g.Stats()
	}
	return out
}
