// Package heightfield provides the sampled height buffer that the erosion
// simulators and the generation pipeline operate on.
package heightfield

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Buffer is a square grid of height samples. Data is stored row-major with
// exactly Resolution*Resolution elements. CellSize is the world-space distance
// between adjacent samples.
type Buffer struct {
	Data       []float32
	Resolution int
	CellSize   float32
}

// New allocates a zeroed buffer.
func New(resolution int, cellSize float32) *Buffer {
	return &Buffer{
		Data:       make([]float32, resolution*resolution),
		Resolution: resolution,
		CellSize:   cellSize,
	}
}

// Wrap adopts an existing height slice without copying. The slice length must
// equal resolution squared.
func Wrap(data []float32, resolution int, cellSize float32) (*Buffer, error) {
	if len(data) != resolution*resolution {
		return nil, fmt.Errorf("heightfield: %d samples for resolution %d", len(data), resolution)
	}
	return &Buffer{Data: data, Resolution: resolution, CellSize: cellSize}, nil
}

// InBounds reports whether the integer cell (x, y) lies inside the grid.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Resolution && y < b.Resolution
}

// InBoundsF reports whether a fractional position can be bilinearly sampled,
// i.e. its enclosing cell quad is fully inside the grid.
func (b *Buffer) InBoundsF(x, y float32) bool {
	return x >= 0 && y >= 0 && x < float32(b.Resolution-1) && y < float32(b.Resolution-1)
}

// At returns the sample at integer cell (x, y).
func (b *Buffer) At(x, y int) float32 {
	return b.Data[y*b.Resolution+x]
}

// Set overwrites the sample at integer cell (x, y).
func (b *Buffer) Set(x, y int, v float32) {
	b.Data[y*b.Resolution+x] = v
}

// Sample returns the bilinearly interpolated height at a fractional grid
// position. Positions are clamped to the valid cell range.
func (b *Buffer) Sample(x, y float32) float32 {
	cx, cy, fx, fy := b.cell(x, y)

	// South edge then north edge, lerped by the fractional offsets.
	s := b.At(cx, cy)*(1-fx) + b.At(cx+1, cy)*fx
	n := b.At(cx, cy+1)*(1-fx) + b.At(cx+1, cy+1)*fx
	return s*(1-fy) + n*fy
}

// AddInterpolated distributes amount across the four cells enclosing the
// fractional position using bilinear weights. The weights sum to one, so the
// total mass in the buffer changes by exactly amount.
func (b *Buffer) AddInterpolated(x, y, amount float32) {
	cx, cy, fx, fy := b.cell(x, y)

	b.Data[cy*b.Resolution+cx] += amount * (1 - fx) * (1 - fy)
	b.Data[cy*b.Resolution+cx+1] += amount * fx * (1 - fy)
	b.Data[(cy+1)*b.Resolution+cx] += amount * (1 - fx) * fy
	b.Data[(cy+1)*b.Resolution+cx+1] += amount * fx * fy
}

// Gradient returns the central-difference slope of the bilinear surface at a
// fractional position, in height units per cell.
func (b *Buffer) Gradient(x, y float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(b.Sample(x+1, y) - b.Sample(x-1, y)) * 0.5,
		(b.Sample(x, y+1) - b.Sample(x, y-1)) * 0.5,
	}
}

// Neighbors8 calls fn for every in-bounds 8-connected neighbor of (x, y).
func (b *Buffer) Neighbors8(x, y int, fn func(nx, ny int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.InBounds(nx, ny) {
				fn(nx, ny)
			}
		}
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Data: data, Resolution: b.Resolution, CellSize: b.CellSize}
}

// Total returns the sum of all samples. Used by the erosion simulators' mass
// accounting and by tests.
func (b *Buffer) Total() float64 {
	var sum float64
	for _, v := range b.Data {
		sum += float64(v)
	}
	return sum
}

// cell clamps a fractional position and splits it into the base cell index and
// the fractional offset within that cell.
func (b *Buffer) cell(x, y float32) (cx, cy int, fx, fy float32) {
	x = clampf(x, 0, float32(b.Resolution-1))
	y = clampf(y, 0, float32(b.Resolution-1))

	cx = int(x)
	cy = int(y)
	if cx >= b.Resolution-1 {
		cx = b.Resolution - 2
	}
	if cy >= b.Resolution-1 {
		cy = b.Resolution - 2
	}

	fx = clampf(x-float32(cx), 0, 1)
	fy = clampf(y-float32(cy), 0, 1)
	return cx, cy, fx, fy
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
