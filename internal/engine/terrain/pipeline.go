package terrain

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/erosion"
	"github.com/Faultbox/terrastream/internal/engine/heightfield"
	"github.com/Faultbox/terrastream/internal/engine/noise"
)

// ErrInvalidArgument reports geometry parameters that cannot produce a tile.
var ErrInvalidArgument = errors.New("invalid tile parameters")

// Pipeline synthesizes terrain tiles from an injected noise field. It holds
// no mutable state, so one Pipeline serves every streaming worker
// concurrently.
type Pipeline struct {
	field noise.Field
}

// NewPipeline returns a pipeline over the given noise field.
func NewPipeline(field noise.Field) *Pipeline {
	return &Pipeline{field: field}
}

const (
	volcanicHeight = 22.0
	craterDepth    = 12.0
)

// GenerateTile produces one finished tile. For every cell it samples the
// continental base, classifies the biome from climate, perturbs by the
// biome's feature amplitude, applies per-cell erosion detail, and derives the
// normal from the unperturbed continental field so normals stay smooth where
// erosion adds high-frequency detail. Whole-buffer erosion passes run last
// when enabled. Deterministic for a given (position, lod, config).
func (p *Pipeline) GenerateTile(pos mgl32.Vec2, tileSize float32, resolution, lod int, cfg GenerationConfig) (*TileData, error) {
	if resolution <= 1 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidArgument, resolution)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size %f", ErrInvalidArgument, tileSize)
	}

	tile := newTileData(pos, tileSize, resolution, lod)
	if cfg.EnableCaves {
		tile.CaveDensity = make([]float32, resolution*resolution)
	}
	if cfg.EnableMinerals {
		tile.MineralDensity = make([]float32, resolution*resolution)
	}

	step := float64(tileSize) / float64(resolution-1)
	eps := step * 0.5

	for y := 0; y < resolution; y++ {
		wz := float64(pos.Y()) + float64(y)*step
		for x := 0; x < resolution; x++ {
			wx := float64(pos.X()) + float64(x)*step
			i := y*resolution + x

			base := p.field.Continental(wx, wz) * float64(cfg.HeightScale)
			temp, hum := p.field.Climate(wx, wz)
			biome := ClassifyBiome(float32(temp), float32(hum), float32(base), cfg.SeaLevel)

			h := base + p.field.Feature(wx, wz)*float64(featureAmplitude(biome))

			// Central differences of the unperturbed continental field serve
			// both the talus slope estimate and the normal.
			hl := p.field.Continental(wx-eps, wz) * float64(cfg.HeightScale)
			hr := p.field.Continental(wx+eps, wz) * float64(cfg.HeightScale)
			hd := p.field.Continental(wx, wz-eps) * float64(cfg.HeightScale)
			hu := p.field.Continental(wx, wz+eps) * float64(cfg.HeightScale)

			h = p.erodeCell(h, wx, wz, hl, hr, hd, hu, eps, cfg)

			n := mgl32.Vec3{float32(hl - hr), float32(2 * eps), float32(hd - hu)}.Normalize()
			tile.NormalMap[i] = mgl32.Vec4{n.X(), n.Y(), n.Z(), 1}
			tile.HeightMap[i] = float32(h)
			tile.BiomeMap[i] = byte(biome)

			if cfg.EnableCaves {
				tile.CaveDensity[i] = float32(p.field.Cave(wx, wz))
			}
			if cfg.EnableMinerals {
				tile.MineralDensity[i] = float32(0.6*p.field.Volcanic(wx, wz) + 0.4*p.field.Cave(wx, wz))
			}
		}
	}

	if err := p.erodeTile(tile, cfg); err != nil {
		return nil, err
	}
	return tile, nil
}

// erodeCell applies the per-cell erosion detail: talus thinning above the
// threshold slope, river carving on land, and optional volcanic and crater
// shaping.
func (p *Pipeline) erodeCell(h, wx, wz, hl, hr, hd, hu, eps float64, cfg GenerationConfig) float64 {
	gx := (hr - hl) / (2 * eps)
	gz := (hu - hd) / (2 * eps)
	slope := math.Sqrt(gx*gx + gz*gz)
	if s := float32(slope); s > cfg.TalusSlope {
		h -= float64((s - cfg.TalusSlope) * cfg.TalusThinning)
	}

	if h > float64(cfg.SeaLevel) {
		if r := p.field.River(wx, wz); r > float64(cfg.RiverThreshold) {
			carve := (r - float64(cfg.RiverThreshold)) / (1 - float64(cfg.RiverThreshold)) * float64(cfg.RiverDepth)
			h = math.Max(h-carve, float64(cfg.SeaLevel))
		}
	}

	if cfg.EnableVolcanic {
		h += p.field.Volcanic(wx, wz) * volcanicHeight
	}
	if cfg.EnableCraters {
		h -= p.field.Crater(wx, wz) * craterDepth
	}
	return h
}

// erodeTile runs the enabled whole-buffer erosion passes over the finished
// heightmap.
func (p *Pipeline) erodeTile(tile *TileData, cfg GenerationConfig) error {
	if !cfg.EnableHydraulic && !cfg.EnableThermal && !cfg.EnableWind {
		return nil
	}

	cellSize := tile.TileSize / float32(tile.Resolution-1)
	buf, err := heightfield.Wrap(tile.HeightMap, tile.Resolution, cellSize)
	if err != nil {
		return err
	}

	if cfg.EnableThermal {
		erosion.ApplyThermalErosion(buf, cfg.Thermal)
	}
	if cfg.EnableHydraulic {
		erosion.ApplyHydraulicErosion(buf, cfg.Hydraulic, rand.New(rand.NewSource(tileSeed(tile, cfg.Seed))))
	}
	if cfg.EnableWind {
		erosion.ApplyWindErosion(buf, cfg.Wind)
	}
	return nil
}

// tileSeed mixes the world seed with the tile identity so every tile gets a
// distinct but reproducible droplet sequence.
func tileSeed(tile *TileData, seed int64) int64 {
	key := tile.Key()
	h := uint64(seed)
	h ^= uint64(key.X) * 0x9e3779b97f4a7c15
	h ^= uint64(key.Z) * 0xc2b2ae3d27d4eb4f
	h ^= uint64(key.LOD) * 0x165667b19e3779f9
	return int64(h)
}
