// Package config handles service configuration loading and management.
package config

import "time"

// Config holds all service settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Tiles   TilesConfig   `yaml:"tiles"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"STLMAPS_ADDR" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"STLMAPS_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"STLMAPS_WRITE_TIMEOUT"`
}

// TilesConfig holds the tile transport settings. URL templates use
// {s}/{z}/{x}/{y} placeholders; MBTilesPath switches the raster source
// to a local archive when set.
type TilesConfig struct {
	RasterURL        string        `yaml:"raster_url" env:"STLMAPS_RASTER_URL"`
	RasterSubdomains []string      `yaml:"raster_subdomains" env:"STLMAPS_RASTER_SUBDOMAINS"`
	VectorURL        string        `yaml:"vector_url" env:"STLMAPS_VECTOR_URL"`
	VectorSubdomains []string      `yaml:"vector_subdomains" env:"STLMAPS_VECTOR_SUBDOMAINS"`
	MBTilesPath      string        `yaml:"mbtiles_path" env:"STLMAPS_MBTILES_PATH"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout" env:"STLMAPS_FETCH_TIMEOUT"`
}

// RenderConfig holds the default render parameters.
type RenderConfig struct {
	GridWidth            int     `yaml:"grid_width" env:"STLMAPS_GRID_WIDTH" validate:"min=2,max=1000"`
	GridHeight           int     `yaml:"grid_height" env:"STLMAPS_GRID_HEIGHT" validate:"min=2,max=1000"`
	Zoom                 int     `yaml:"zoom" env:"STLMAPS_ZOOM" validate:"min=0,max=22"`
	VerticalExaggeration float64 `yaml:"vertical_exaggeration" env:"STLMAPS_VERTICAL_EXAGGERATION" validate:"gt=0"`
	BaseHeight           float64 `yaml:"base_height" env:"STLMAPS_BASE_HEIGHT" validate:"gte=0"`
	Resolution           int     `yaml:"resolution" env:"STLMAPS_RESOLUTION" validate:"min=2,max=64"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"STLMAPS_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file" env:"STLMAPS_LOG_FILE"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Tiles: TilesConfig{
			RasterURL:        "https://{s}.tiles.example.com/terrain-rgb/{z}/{x}/{y}.png",
			RasterSubdomains: []string{"a", "b", "c"},
			VectorURL:        "https://{s}.tiles.example.com/vector/{z}/{x}/{y}.mvt",
			VectorSubdomains: []string{"a", "b", "c"},
			FetchTimeout:     15 * time.Second,
		},
		Render: RenderConfig{
			GridWidth:            256,
			GridHeight:           256,
			Zoom:                 12,
			VerticalExaggeration: 20,
			BaseHeight:           1,
			Resolution:           64,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
