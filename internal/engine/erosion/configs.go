// Package erosion implements the geomorphology simulators: hydraulic droplet
// erosion, thermal talus collapse, wind abrasion, and flow-accumulation based
// drainage extraction. All functions are stateless and operate on a
// caller-owned buffer, so independent buffers can be processed concurrently.
package erosion

import "github.com/go-gl/mathgl/mgl32"

// HydraulicConfig parameterizes the droplet simulation.
type HydraulicConfig struct {
	Iterations             int     `yaml:"iterations"`
	MaxDropletLifetime     int     `yaml:"max_droplet_lifetime"`
	Inertia                float32 `yaml:"inertia"`                  // 0 = follow gradient, 1 = never turn
	SedimentCapacityFactor float32 `yaml:"sediment_capacity_factor"`
	MinSlope               float32 `yaml:"min_slope"` // capacity floor on flat ground
	ErosionStrength        float32 `yaml:"erosion_strength"`
	DepositionStrength     float32 `yaml:"deposition_strength"`
	EvaporationRate        float32 `yaml:"evaporation_rate"`
	Gravity                float32 `yaml:"gravity"`
}

// DefaultHydraulicConfig returns a balanced droplet configuration.
func DefaultHydraulicConfig() HydraulicConfig {
	return HydraulicConfig{
		Iterations:             2000,
		MaxDropletLifetime:     30,
		Inertia:                0.05,
		SedimentCapacityFactor: 4.0,
		MinSlope:               0.01,
		ErosionStrength:        0.3,
		DepositionStrength:     0.3,
		EvaporationRate:        0.01,
		Gravity:                4.0,
	}
}

// ThermalConfig parameterizes talus collapse.
type ThermalConfig struct {
	Iterations          int     `yaml:"iterations"`
	TalusAngle          float32 `yaml:"talus_angle"` // radians; ~0.55 is a 31 degree scree slope
	ErosionRate         float32 `yaml:"erosion_rate"`
	MinHeightDifference float32 `yaml:"min_height_difference"`
}

// DefaultThermalConfig returns a balanced talus configuration.
func DefaultThermalConfig() ThermalConfig {
	return ThermalConfig{
		Iterations:          8,
		TalusAngle:          0.55,
		ErosionRate:         0.25,
		MinHeightDifference: 0.001,
	}
}

// WindConfig parameterizes wind abrasion and leeward deposition.
type WindConfig struct {
	Iterations     int        `yaml:"iterations"`
	WindDirection  mgl32.Vec2 `yaml:"-"` // normalized at apply time
	WindStrength   float32    `yaml:"wind_strength"`
	AbrasionRate   float32    `yaml:"abrasion_rate"`
	DepositionRate float32    `yaml:"deposition_rate"` // fraction of abraded mass redeposited leeward
}

// DefaultWindConfig returns a gentle prevailing-westerly configuration.
func DefaultWindConfig() WindConfig {
	return WindConfig{
		Iterations:     4,
		WindDirection:  mgl32.Vec2{1, 0},
		WindStrength:   0.05,
		AbrasionRate:   0.5,
		DepositionRate: 0.5,
	}
}

// DrainageConfig parameterizes stream extraction from flow accumulation.
type DrainageConfig struct {
	MinStreamLength float32 `yaml:"min_stream_length"` // world units
}

// DefaultDrainageConfig returns a drainage configuration that keeps only
// streams long enough to carve visible valleys.
func DefaultDrainageConfig() DrainageConfig {
	return DrainageConfig{MinStreamLength: 4}
}
