package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layer frequencies in cycles per world unit. Continental features span
// hundreds of units; detail layers repeat much faster.
const (
	continentalScale = 1.0 / 256
	climateScale     = 1.0 / 512
	featureScale     = 1.0 / 24
	riverScale       = 1.0 / 96
	caveScale        = 1.0 / 32
	volcanicScale    = 1.0 / 192
	craterScale      = 1.0 / 128
)

// Simplex is the default Field implementation. Independent layers come from
// seed-offset generators, so one seed reproduces the whole world. Immutable
// after construction and safe for concurrent use.
type Simplex struct {
	continental opensimplex.Noise
	temperature opensimplex.Noise
	humidity    opensimplex.Noise
	cave        opensimplex.Noise

	feature  *perlin.Perlin
	river    *perlin.Perlin
	volcanic *perlin.Perlin
	crater   *perlin.Perlin
}

// NewSimplex builds a Field from a world seed.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{
		continental: opensimplex.NewNormalized(seed),
		temperature: opensimplex.NewNormalized(seed + 1),
		humidity:    opensimplex.NewNormalized(seed + 2),
		cave:        opensimplex.NewNormalized(seed + 3),

		feature:  perlin.NewPerlin(2, 2, 3, seed+10),
		river:    perlin.NewPerlin(2, 3, 4, seed+11),
		volcanic: perlin.NewPerlin(2, 2, 3, seed+12),
		crater:   perlin.NewPerlin(2.5, 2, 2, seed+13),
	}
}

// Continental returns fractal base terrain in [-1, 1].
func (s *Simplex) Continental(x, y float64) float64 {
	x *= continentalScale
	y *= continentalScale

	// Five-octave fBm over normalized simplex, remapped to [-1, 1].
	var sum, amp, norm float64
	amp = 1
	for o := 0; o < 5; o++ {
		sum += s.continental.Eval2(x, y) * amp
		norm += amp
		amp *= 0.5
		x *= 2
		y *= 2
	}
	return sum/norm*2 - 1
}

// Feature returns biome surface detail in [-1, 1].
func (s *Simplex) Feature(x, y float64) float64 {
	return clamp(s.feature.Noise2D(x*featureScale, y*featureScale)*2, -1, 1)
}

// River returns a ridged field whose crests trace channel networks.
func (s *Simplex) River(x, y float64) float64 {
	n := s.river.Noise2D(x*riverScale, y*riverScale)
	// Fold the signal so zero crossings become ridges.
	return clamp(1-math.Abs(n*4), 0, 1)
}

// Cave returns cavity density in [0, 1].
func (s *Simplex) Cave(x, y float64) float64 {
	return s.cave.Eval2(x*caveScale, y*caveScale)
}

// Volcanic returns cone shaping in [0, 1], sparse by construction.
func (s *Simplex) Volcanic(x, y float64) float64 {
	n := s.volcanic.Noise2D(x*volcanicScale, y*volcanicScale)
	// Only strong positive lobes become volcanic terrain.
	return clamp((n-0.25)*4, 0, 1)
}

// Crater returns impact depression depth in [0, 1], sparse by construction.
func (s *Simplex) Crater(x, y float64) float64 {
	n := s.crater.Noise2D(x*craterScale, y*craterScale)
	return clamp((-n-0.3)*5, 0, 1)
}

// Climate returns temperature and humidity fields in [0, 1].
func (s *Simplex) Climate(x, y float64) (float64, float64) {
	return s.temperature.Eval2(x*climateScale, y*climateScale),
		s.humidity.Eval2(x*climateScale, y*climateScale)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
