package erosion

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/heightfield"
)

// DrainagePattern is a traced downhill stream extracted from flow
// accumulation. StreamPath is ordered from head to mouth in world units.
type DrainagePattern struct {
	StreamPath   []mgl32.Vec2
	FlowStrength float32
	StreamOrder  int
}

// CalculateFlowAccumulation computes, for every cell, how many cells drain
// through it. Each cell contributes itself, cells are processed from highest
// to lowest, and a cell routes its whole accumulation to its single lowest
// 8-connected neighbor. Local minima keep what they accumulate.
func CalculateFlowAccumulation(buf *heightfield.Buffer) []float32 {
	res := buf.Resolution
	flow := make([]float32, res*res)
	for i := range flow {
		flow[i] = 1
	}

	order := make([]int, res*res)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return buf.Data[order[a]] > buf.Data[order[b]]
	})

	for _, idx := range order {
		x, y := idx%res, idx/res
		lowest, ok := lowestNeighbor(buf, x, y)
		if ok {
			flow[lowest] += flow[idx]
		}
	}
	return flow
}

// GenerateDrainagePatterns seeds stream heads at cells whose accumulation
// exceeds one percent of the cell count, traces each downhill to its local
// minimum, and keeps paths at least MinStreamLength world units long.
func GenerateDrainagePatterns(buf *heightfield.Buffer, flow []float32, cfg DrainageConfig) []DrainagePattern {
	res := buf.Resolution
	threshold := 0.01 * float32(res*res)

	var patterns []DrainagePattern
	for idx, f := range flow {
		if f <= threshold {
			continue
		}

		path := tracePath(buf, idx%res, idx/res)
		if float32(len(path))*buf.CellSize < cfg.MinStreamLength {
			continue
		}

		patterns = append(patterns, DrainagePattern{
			StreamPath:   path,
			FlowStrength: f,
			StreamOrder:  streamOrder(f, threshold),
		})
	}
	return patterns
}

// tracePath follows lowest neighbors from (x, y) to a local minimum.
func tracePath(buf *heightfield.Buffer, x, y int) []mgl32.Vec2 {
	res := buf.Resolution
	path := make([]mgl32.Vec2, 0, 16)

	for steps := 0; steps < res*res; steps++ {
		path = append(path, mgl32.Vec2{float32(x) * buf.CellSize, float32(y) * buf.CellSize})
		lowest, ok := lowestNeighbor(buf, x, y)
		if !ok {
			break
		}
		x, y = lowest%res, lowest/res
	}
	return path
}

// lowestNeighbor returns the index of the strictly lower lowest 8-connected
// neighbor, or false at a local minimum.
func lowestNeighbor(buf *heightfield.Buffer, x, y int) (int, bool) {
	res := buf.Resolution
	h := buf.At(x, y)

	best := -1
	bestH := h
	buf.Neighbors8(x, y, func(nx, ny int) {
		if nh := buf.At(nx, ny); nh < bestH {
			bestH = nh
			best = ny*res + nx
		}
	})
	return best, best >= 0
}

// streamOrder buckets flow strength: order grows by one per doubling over the
// seed threshold.
func streamOrder(flow, threshold float32) int {
	order := 1
	for flow >= threshold*2 {
		flow /= 2
		order++
	}
	return order
}
