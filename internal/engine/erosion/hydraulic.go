package erosion

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/heightfield"
)

// ApplyHydraulicErosion runs cfg.Iterations independent droplet simulations
// over the buffer. Droplets start at random positions, flow downhill with
// inertia, pick up sediment on steep descents and deposit it on flats and
// uphill moves. The caller supplies the RNG so concurrent workers stay
// independent and tiles stay reproducible from their seed.
func ApplyHydraulicErosion(buf *heightfield.Buffer, cfg HydraulicConfig, rng *rand.Rand) {
	span := float32(buf.Resolution - 1)
	for i := 0; i < cfg.Iterations; i++ {
		start := mgl32.Vec2{rng.Float32() * span, rng.Float32() * span}
		simulateDroplet(buf, cfg, rng, start)
	}
}

// simulateDroplet walks a single droplet from start until it leaves the tile
// or its lifetime expires. A droplet that survives the full lifetime deposits
// whatever sediment it still carries at its final position, so mass only
// leaves the buffer when water actually flows off the tile edge.
func simulateDroplet(buf *heightfield.Buffer, cfg HydraulicConfig, rng *rand.Rand, pos mgl32.Vec2) {
	var dir mgl32.Vec2
	velocity := float32(1)
	water := float32(1)
	sediment := float32(0)

	for life := 0; life < cfg.MaxDropletLifetime; life++ {
		if !buf.InBoundsF(pos.X(), pos.Y()) {
			return
		}

		oldPos := pos
		oldHeight := buf.Sample(pos.X(), pos.Y())
		grad := buf.Gradient(pos.X(), pos.Y())

		// Blend previous direction with the downhill gradient, then take a
		// unit step. A stalled droplet on flat ground picks a random heading.
		dir = dir.Mul(cfg.Inertia).Sub(grad.Mul(1 - cfg.Inertia))
		if dir.Len() < 1e-6 {
			angle := rng.Float64() * 2 * math.Pi
			dir = mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}
		} else {
			dir = dir.Normalize()
		}
		pos = pos.Add(dir)

		if !buf.InBoundsF(pos.X(), pos.Y()) {
			// Flowed off the tile; the remaining load leaves with the water.
			return
		}

		newHeight := buf.Sample(pos.X(), pos.Y())
		heightDiff := newHeight - oldHeight

		capacity := maxf(-heightDiff, cfg.MinSlope) * velocity * water * cfg.SedimentCapacityFactor

		if heightDiff > 0 || sediment > capacity {
			// Moving uphill fills the pit behind the droplet; otherwise shed
			// the overflow above capacity.
			var deposit float32
			if heightDiff > 0 {
				deposit = minf(heightDiff, sediment)
			} else {
				deposit = (sediment - capacity) * cfg.DepositionStrength
			}
			sediment -= deposit
			buf.AddInterpolated(oldPos.X(), oldPos.Y(), deposit)
		} else {
			erode := minf((capacity-sediment)*cfg.ErosionStrength, -heightDiff)
			buf.AddInterpolated(oldPos.X(), oldPos.Y(), -erode)
			sediment += erode
		}

		velocity = float32(math.Sqrt(math.Max(0, float64(velocity*velocity+heightDiff*cfg.Gravity))))
		water *= 1 - cfg.EvaporationRate
	}

	if sediment > 0 && buf.InBoundsF(pos.X(), pos.Y()) {
		buf.AddInterpolated(pos.X(), pos.Y(), sediment)
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
