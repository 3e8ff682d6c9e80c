package erosion

import (
	"math"

	"github.com/Faultbox/terrastream/internal/engine/heightfield"
)

// ApplyWindErosion abrades windward slopes and redeposits a fraction of the
// removed material one cell further downwind. Double-buffered per pass like
// thermal erosion.
func ApplyWindErosion(buf *heightfield.Buffer, cfg WindConfig) {
	if cfg.Iterations <= 0 || cfg.WindDirection.Len() < 1e-6 {
		return
	}

	wind := cfg.WindDirection.Normalize()
	// The single leeward cell one step along the wind.
	stepX := int(math.Round(float64(wind.X())))
	stepY := int(math.Round(float64(wind.Y())))

	cur := buf.Data
	next := make([]float32, len(cur))
	res := buf.Resolution

	for iter := 0; iter < cfg.Iterations; iter++ {
		copy(next, cur)

		work, _ := heightfield.Wrap(cur, res, buf.CellSize)
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				grad := work.Gradient(float32(x), float32(y))

				// Windward exposure: slope rising against the wind.
				exposure := grad.Dot(wind)
				if exposure <= 0 {
					continue
				}

				abraded := exposure * cfg.WindStrength * cfg.AbrasionRate
				next[y*res+x] -= abraded

				lx, ly := x+stepX, y+stepY
				if work.InBounds(lx, ly) {
					next[ly*res+lx] += abraded * cfg.DepositionRate
				}
			}
		}

		cur, next = next, cur
	}

	if &cur[0] != &buf.Data[0] {
		copy(buf.Data, cur)
	}
}
