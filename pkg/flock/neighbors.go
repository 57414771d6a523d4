package flock

import (
	"math"
)

// NeighborIndex narrows the population an agent has to scan.
// Rebuild is called once per tick, before any Candidates call; Candidates
// may then be called concurrently and must not mutate the index.
type NeighborIndex interface {
	Rebuild(agents []*Agent)
	Candidates(a *Agent) []*Agent
}

// BruteForce hands every agent the whole population: the O(N²) reference scan.
type BruteForce struct {
	agents []*Agent
}

func (b *BruteForce) Rebuild(agents []*Agent) { b.agents = agents }

func (b *BruteForce) Candidates(*Agent) []*Agent { return b.agents }

type gridKey struct {
	x, y int
}

// Grid is a uniform spatial hash over [-1,1]². With a cell size of at least
// both the separation and the cohesion radius, the 3x3 block of cells around an agent holds every
// agent it can sense, so results match BruteForce up to summation order.
type Grid struct {
	cellSize float64
	cells    map[gridKey][]*Agent
}

// NewGrid creates a grid index; the flock rejects a cell size smaller than
// either of its radii.
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[gridKey][]*Agent),
	}
}

// CellSize returns the grid cell edge length.
func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) Rebuild(agents []*Agent) {
	// Reset slices to length 0 but keep their capacity.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for _, a := range agents {
		key := g.keyOf(a)
		g.cells[key] = append(g.cells[key], a)
	}
}

// Candidates returns the agents of the 3x3 block of cells around a.
func (g *Grid) Candidates(a *Agent) []*Agent {
	center := g.keyOf(a)
	var out []*Agent
	for i := center.x - 1; i <= center.x+1; i++ {
		for j := center.y - 1; j <= center.y+1; j++ {
			out = append(out, g.cells[gridKey{x: i, y: j}]...)
		}
	}
	return out
}

func (g *Grid) keyOf(a *Agent) gridKey {
	// Shift into [0,2] so cells do not straddle the origin.
	return gridKey{
		x: int(math.Floor((a.pos.X + 1) / g.cellSize)),
		y: int(math.Floor((a.pos.Y + 1) / g.cellSize)),
	}
}
