// Package config handles engine configuration loading and management.
package config

import (
	"github.com/Faultbox/terrastream/internal/engine/streaming"
	"github.com/Faultbox/terrastream/internal/engine/terrain"
)

// Config holds all terrastream settings.
type Config struct {
	Streaming  streaming.Config         `yaml:"streaming"`
	Generation terrain.GenerationConfig `yaml:"generation"`
	Viewer     ViewerConfig             `yaml:"viewer"`
	Server     ServerConfig             `yaml:"server"`
	Logging    LoggingConfig            `yaml:"logging"`
}

// ViewerConfig drives the daemon's streaming focus: tiles are requested in a
// radius around a viewer position that drifts at WanderSpeed world units per
// second.
type ViewerConfig struct {
	TileSize    float32 `yaml:"tile_size"`
	Resolution  int     `yaml:"resolution"`
	Radius      int     `yaml:"radius"` // tiles requested around the viewer per axis
	WanderSpeed float32 `yaml:"wander_speed"`
}

// ServerConfig holds the stats overlay feed settings.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Streaming:  streaming.DefaultConfig(),
		Generation: terrain.DefaultGenerationConfig(),
		Viewer: ViewerConfig{
			TileSize:    128,
			Resolution:  65,
			Radius:      3,
			WanderSpeed: 8,
		},
		Server: ServerConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8780",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
