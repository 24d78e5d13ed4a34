package tilesource

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb/maptile"
)

// MBTilesSource reads tiles from a local MBTiles archive. MBTiles stores
// rows in TMS order, so the Y index is flipped against the XYZ scheme.
type MBTilesSource struct {
	db *sql.DB
}

// OpenMBTiles opens an MBTiles file read-only.
func OpenMBTiles(path string) (*MBTilesSource, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}
	return &MBTilesSource{db: db}, nil
}

// Close releases the underlying database handle.
func (s *MBTilesSource) Close() error { return s.db.Close() }

// FetchTile implements Source.
func (s *MBTilesSource) FetchTile(ctx context.Context, t maptile.Tile) ([]byte, error) {
	tmsY := (uint32(1)<<t.Z - 1) - t.Y
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"select tile_data from tiles where zoom_level = ? and tile_column = ? and tile_row = ?",
		int(t.Z), int(t.X), int(tmsY),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tile %d/%d/%d not in archive", t.Z, t.X, t.Y)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
