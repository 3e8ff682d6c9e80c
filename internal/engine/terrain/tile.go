// Package terrain defines the tile data model and the per-tile generation
// pipeline that turns noise primitives and erosion into finished heightfield
// tiles.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// keyScale quantizes float world positions onto a 1/1024-unit lattice so
// nearby-but-distinct tiles can never alias to the same cache key.
const keyScale = 1024

// TileKey identifies a tile by its quantized world position and LOD level.
// Tile size and resolution are request parameters, not identity.
type TileKey struct {
	X, Z int64
	LOD  int32
}

// Quantize maps a float tile position and LOD to its exact integer key.
func Quantize(pos mgl32.Vec2, lod int32) TileKey {
	return TileKey{
		X:   int64(math.Round(float64(pos.X()) * keyScale)),
		Z:   int64(math.Round(float64(pos.Y()) * keyScale)),
		LOD: lod,
	}
}

// TileData is one finished terrain tile. HeightMap, NormalMap and BiomeMap
// always hold exactly Resolution*Resolution entries; CaveDensity and
// MineralDensity are nil unless their features were enabled at generation
// time.
type TileData struct {
	WorldPosition mgl32.Vec2
	TileSize      float32
	Resolution    int
	LOD           int

	HeightMap []float32
	NormalMap []mgl32.Vec4
	BiomeMap  []byte

	CaveDensity    []float32
	MineralDensity []float32
}

// Key returns the cache identity of the tile.
func (t *TileData) Key() TileKey {
	return Quantize(t.WorldPosition, int32(t.LOD))
}

func newTileData(pos mgl32.Vec2, tileSize float32, resolution, lod int) *TileData {
	n := resolution * resolution
	return &TileData{
		WorldPosition: pos,
		TileSize:      tileSize,
		Resolution:    resolution,
		LOD:           lod,
		HeightMap:     make([]float32, n),
		NormalMap:     make([]mgl32.Vec4, n),
		BiomeMap:      make([]byte, n),
	}
}
