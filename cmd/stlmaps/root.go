package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/config"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/engine"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/logger"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/tilesource"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/geo"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stlmaps",
	Short: "3D map tile generator",
	Long: `stlmaps generates 3D meshes of geographic regions from raster
elevation tiles and vector map tiles: a closed terrain box plus extruded
building and road layers, exportable as a 3MF package.

Configuration is read from a YAML file (--config, ./stlmaps.yaml or the
user config directory) with environment-variable overrides.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
}

// loadConfig reads the config honoring the --config flag and initializes
// logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

// buildEngine wires the configured tile sources into an engine.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	var raster tilesource.Source
	switch {
	case cfg.Tiles.MBTilesPath != "":
		mb, err := tilesource.OpenMBTiles(cfg.Tiles.MBTilesPath)
		if err != nil {
			return nil, fmt.Errorf("opening mbtiles: %w", err)
		}
		raster = mb
	case cfg.Tiles.RasterURL != "":
		raster = tilesource.NewHTTPSource(cfg.Tiles.RasterURL, cfg.Tiles.RasterSubdomains, cfg.Tiles.FetchTimeout)
	}

	var vector tilesource.Source
	if cfg.Tiles.VectorURL != "" {
		vector = tilesource.NewHTTPSource(cfg.Tiles.VectorURL, cfg.Tiles.VectorSubdomains, cfg.Tiles.FetchTimeout)
	}

	return engine.New(engine.Options{
		RasterSource: raster,
		VectorSource: vector,
		Logger:       logger.Log,
	}), nil
}

// parseBBox parses "min_lng,min_lat,max_lng,max_lat".
func parseBBox(s string) (geo.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.BBox{}, fmt.Errorf("bbox must be min_lng,min_lat,max_lng,max_lat")
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.BBox{}, fmt.Errorf("bbox component %q: %w", p, err)
		}
		vals[i] = v
	}
	b := geo.NewBBox(vals[0], vals[1], vals[2], vals[3])
	if !b.Valid() {
		return geo.BBox{}, fmt.Errorf("bbox %q is degenerate", s)
	}
	return b, nil
}
