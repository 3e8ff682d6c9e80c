package erosion

import (
	"math"

	"github.com/Faultbox/terrastream/internal/engine/heightfield"
)

// ApplyThermalErosion collapses slopes steeper than the talus angle by moving
// material to lower 8-connected neighbors. Each pass reads from the previous
// pass and writes to a scratch buffer, so transfers within a pass do not
// interfere with each other.
func ApplyThermalErosion(buf *heightfield.Buffer, cfg ThermalConfig) {
	if cfg.Iterations <= 0 {
		return
	}

	maxHeightDiff := float32(math.Tan(float64(cfg.TalusAngle))) * buf.CellSize

	cur := buf.Data
	next := make([]float32, len(cur))
	res := buf.Resolution

	for iter := 0; iter < cfg.Iterations; iter++ {
		copy(next, cur)

		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				h := cur[y*res+x]

				// Collect neighbors below the talus threshold relative to
				// this cell and the total excess above it.
				var total float32
				var lower []int
				buf.Neighbors8(x, y, func(nx, ny int) {
					diff := h - cur[ny*res+nx]
					if diff > maxHeightDiff {
						total += diff - maxHeightDiff
						lower = append(lower, ny*res+nx)
					}
				})

				if total <= cfg.MinHeightDifference || len(lower) == 0 {
					continue
				}

				moved := total * cfg.ErosionRate
				next[y*res+x] -= moved
				share := moved / float32(len(lower))
				for _, idx := range lower {
					next[idx] += share
				}
			}
		}

		cur, next = next, cur
	}

	if &cur[0] != &buf.Data[0] {
		copy(buf.Data, cur)
	}
}
