package terrain

import "github.com/Faultbox/terrastream/internal/engine/erosion"

// GenerationConfig carries everything a worker needs to synthesize one tile.
// It is copied into each request, so tiles at different LODs can use
// different settings without racing.
type GenerationConfig struct {
	Seed        int64   `yaml:"seed"`
	SeaLevel    float32 `yaml:"sea_level"`
	HeightScale float32 `yaml:"height_scale"` // world units per unit of continental noise

	// Per-cell erosion detail.
	TalusSlope     float32 `yaml:"talus_slope"`     // height units per world unit
	TalusThinning  float32 `yaml:"talus_thinning"`  // material removed per unit of excess slope
	RiverThreshold float32 `yaml:"river_threshold"` // river noise value where carving starts
	RiverDepth     float32 `yaml:"river_depth"`

	EnableVolcanic bool `yaml:"enable_volcanic"`
	EnableCraters  bool `yaml:"enable_craters"`
	EnableCaves    bool `yaml:"enable_caves"`
	EnableMinerals bool `yaml:"enable_minerals"`

	// Whole-buffer erosion passes run after per-cell synthesis.
	EnableHydraulic bool                    `yaml:"enable_hydraulic"`
	EnableThermal   bool                    `yaml:"enable_thermal"`
	EnableWind      bool                    `yaml:"enable_wind"`
	Hydraulic       erosion.HydraulicConfig `yaml:"hydraulic"`
	Thermal         erosion.ThermalConfig   `yaml:"thermal"`
	Wind            erosion.WindConfig      `yaml:"wind"`
}

// DefaultGenerationConfig returns settings that produce plausible mixed
// terrain with moderate erosion cost per tile.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Seed:        1,
		SeaLevel:    0,
		HeightScale: 64,

		TalusSlope:     1.2,
		TalusThinning:  0.35,
		RiverThreshold: 0.85,
		RiverDepth:     6,

		EnableVolcanic: true,
		EnableCraters:  false,
		EnableCaves:    false,
		EnableMinerals: false,

		EnableHydraulic: true,
		EnableThermal:   true,
		EnableWind:      false,
		Hydraulic:       erosion.DefaultHydraulicConfig(),
		Thermal:         erosion.DefaultThermalConfig(),
		Wind:            erosion.DefaultWindConfig(),
	}
}
