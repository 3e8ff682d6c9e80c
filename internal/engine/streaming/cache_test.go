package streaming

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/terrain"
)

// makeTile builds a minimal tile for cache tests; the cache never inspects
// layer contents beyond identity.
func makeTile(x, z float32, lod int) *terrain.TileData {
	return &terrain.TileData{
		WorldPosition: mgl32.Vec2{x, z},
		TileSize:      64,
		Resolution:    2,
		LOD:           lod,
		HeightMap:     []float32{x, z, float32(lod), 0},
		NormalMap:     make([]mgl32.Vec4, 4),
		BiomeMap:      make([]byte, 4),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewTileCache(8)
	tile := makeTile(100, -200, 2)
	c.Add(tile, 1)

	got := c.Get(tile.Key(), 2)
	if got == nil {
		t.Fatal("cached tile not found")
	}
	if got.WorldPosition != tile.WorldPosition || got.LOD != tile.LOD {
		t.Errorf("got tile at %v lod %d, want %v lod %d",
			got.WorldPosition, got.LOD, tile.WorldPosition, tile.LOD)
	}
	for i := range tile.HeightMap {
		if got.HeightMap[i] != tile.HeightMap[i] {
			t.Fatalf("height map diverged at %d", i)
		}
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewTileCache(8)
	c.Add(makeTile(0, 0, 0), 0)

	if c.Get(terrain.Quantize(mgl32.Vec2{64, 0}, 0), 1) != nil {
		t.Error("uncached position returned a tile")
	}
	if c.Get(terrain.Quantize(mgl32.Vec2{0, 0}, 1), 1) != nil {
		t.Error("wrong lod returned a tile")
	}
}

func TestCacheBound(t *testing.T) {
	const maxSize = 10
	c := NewTileCache(maxSize)

	for i := 0; i < 3*maxSize; i++ {
		c.Add(makeTile(float32(i)*64, 0, 0), float64(i))
		if c.Len() > maxSize {
			t.Fatalf("cache grew to %d after insert %d, bound is %d", c.Len(), i, maxSize)
		}
	}
}

func TestCacheEvictsLeastRecentFirst(t *testing.T) {
	c := NewTileCache(2)
	a := makeTile(0, 0, 0)
	b := makeTile(64, 0, 0)
	c.Add(a, 0)
	c.Add(b, 1)

	// Touch a so b becomes the oldest.
	if c.Get(a.Key(), 2) == nil {
		t.Fatal("tile a missing before eviction")
	}

	c.Add(makeTile(128, 0, 0), 3)

	if !c.Contains(a.Key()) {
		t.Error("recently accessed tile was evicted")
	}
	if c.Contains(b.Key()) {
		t.Error("least recently accessed tile survived eviction")
	}
}

func TestCacheEvictionBatchSize(t *testing.T) {
	// Capacity 20 evicts a tenth of the cache per eviction, so inserting into
	// a full cache leaves two slots free before the insert lands.
	const maxSize = 20
	c := NewTileCache(maxSize)
	for i := 0; i < maxSize; i++ {
		c.Add(makeTile(float32(i)*64, 0, 0), float64(i))
	}

	c.Add(makeTile(9999, 0, 0), 100)
	if got := c.Len(); got != maxSize-1 {
		t.Errorf("cache holds %d tiles after batched eviction, want %d", got, maxSize-1)
	}

	// The two oldest entries are the ones removed.
	for i := 0; i < 2; i++ {
		if c.Contains(makeTile(float32(i)*64, 0, 0).Key()) {
			t.Errorf("entry %d should have been in the evicted batch", i)
		}
	}
}

func TestCacheClear(t *testing.T) {
	c := NewTileCache(8)
	for i := 0; i < 5; i++ {
		c.Add(makeTile(float32(i)*64, 0, 0), float64(i))
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("cache holds %d tiles after Clear", c.Len())
	}
}

func TestCacheAccessCount(t *testing.T) {
	c := NewTileCache(4)
	tile := makeTile(0, 0, 0)
	c.Add(tile, 0)

	for i := 0; i < 3; i++ {
		if c.Get(tile.Key(), float64(i+1)) == nil {
			t.Fatalf("hit %d missed", i)
		}
	}
	e := c.entries[tile.Key()]
	if e.AccessCount != 4 { // 1 on insert + 3 hits
		t.Errorf("access count = %d, want 4", e.AccessCount)
	}
	if e.LastAccess != 3 {
		t.Errorf("last access = %f, want 3", e.LastAccess)
	}
}

func TestCacheReplaceSameKey(t *testing.T) {
	c := NewTileCache(2)
	tile := makeTile(0, 0, 0)
	c.Add(tile, 0)
	c.Add(makeTile(0, 0, 0), 5)

	if c.Len() != 1 {
		t.Errorf("re-adding the same key grew the cache to %d", c.Len())
	}
}

func TestCacheDistinctKeysPerLOD(t *testing.T) {
	c := NewTileCache(8)
	for lod := 0; lod < 4; lod++ {
		c.Add(makeTile(0, 0, lod), float64(lod))
	}
	if c.Len() != 4 {
		t.Fatalf("four lods stored as %d entries", c.Len())
	}
	for lod := 0; lod < 4; lod++ {
		got := c.Get(terrain.Quantize(mgl32.Vec2{0, 0}, int32(lod)), 10)
		if got == nil {
			t.Fatalf("lod %d missing", lod)
		}
		if got.LOD != lod {
			t.Errorf("lod %d returned tile with lod %d", lod, got.LOD)
		}
	}
}
