package main

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/maptile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/engine"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/logger"
	"github.com/cioddi/stlmaps-wasm-sub000/internal/pipeline"
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/threemf"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a bbox to a 3MF file",
	Long: `Render generates the terrain box for a bounding box and, when a
vector layer is named, extrudes its features on top, then writes the
result as a 3MF package.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		bboxStr, _ := cmd.Flags().GetString("bbox")
		out, _ := cmd.Flags().GetString("out")
		layer, _ := cmd.Flags().GetString("layer")
		layerColor, _ := cmd.Flags().GetString("layer-color")
		zoom, _ := cmd.Flags().GetInt("zoom")
		if zoom == 0 {
			zoom = cfg.Render.Zoom
		}

		bbox, err := parseBBox(bboxStr)
		if err != nil {
			return err
		}
		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		const group = "render"
		eng.RegisterGroup(group)
		defer eng.FreeGroup(group)

		terrainRes, err := eng.CreateTerrainGeometry(ctx, engine.TerrainRequest{
			Elevation: engine.ElevationRequest{
				BBox:  bbox,
				GridW: cfg.Render.GridWidth,
				GridH: cfg.Render.GridHeight,
				Zoom:  maptile.Zoom(zoom),
				Group: group,
			},
			VerticalExaggeration: cfg.Render.VerticalExaggeration,
			BaseHeight:           cfg.Render.BaseHeight,
			Resolution:           cfg.Render.Resolution,
		})
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		logger.Log.Info("terrain generated",
			zap.Int("vertices", terrainRes.Mesh.VertexCount()),
			zap.Float64("min_elevation", terrainRes.OriginalMin),
			zap.Float64("max_elevation", terrainRes.OriginalMax))

		model := &threemf.Model{
			Meshes: []threemf.Mesh{{
				Name:     "terrain",
				Vertices: terrainRes.Mesh.Positions,
				Indices:  terrainRes.Mesh.Indices,
			}},
		}

		if layer != "" {
			layerBuf, err := eng.ProcessPolygonGeometry(ctx, engine.PolygonRequest{
				BBox:    bbox,
				Dataset: pipeline.Dataset{SourceLayer: layer, Color: layerColor},
				Zoom:    maptile.Zoom(zoom),
				Group:   group,
				Grid:    terrainRes.ProcessedGrid,
				MinElev: terrainRes.OriginalMin,
				MaxElev: terrainRes.OriginalMax,
			})
			if err != nil {
				return fmt.Errorf("layer %s: %w", layer, err)
			}
			if layerBuf.VertexCount() > 0 {
				model.Meshes = append(model.Meshes, threemf.Mesh{
					Name:     layer,
					Vertices: layerBuf.Positions,
					Indices:  layerBuf.Indices,
				})
			}
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := threemf.WritePackage(f, model); err != nil {
			return err
		}
		logger.Log.Info("3mf written", zap.String("path", out), zap.Int("objects", len(model.Meshes)))
		return nil
	},
}

func init() {
	renderCmd.Flags().String("bbox", "", "Bounding box min_lng,min_lat,max_lng,max_lat")
	renderCmd.Flags().String("out", "model.3mf", "Output 3MF path")
	renderCmd.Flags().String("layer", "", "Vector layer to extrude (e.g. building)")
	renderCmd.Flags().String("layer-color", "#d9d0c9", "Layer fill color")
	renderCmd.Flags().IntP("zoom", "z", 0, "Tile zoom level (default from config)")
	renderCmd.MarkFlagRequired("bbox")
	rootCmd.AddCommand(renderCmd)
}
