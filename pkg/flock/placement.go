package flock

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// Placer supplies the initial positions of a flock, all inside [-1,1]².
type Placer interface {
	Place(n int) ([]geometry.Vector2D, error)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniform(r *rand.Rand) float64 {
	return -1 + 2*r.Float64()
}

// ReferencePlacer draws uniform positions and rerolls an axis value that
// exactly equals the value of an already placed agent on the same axis.
// Exact float equality almost never triggers; the policy is kept for
// compatibility with the reference runs. Use SpacedPlacer for real spacing.
type ReferencePlacer struct {
	rng *rand.Rand
}

func NewReferencePlacer(seed uint64) *ReferencePlacer {
	return &ReferencePlacer{rng: newRand(seed)}
}

func (p *ReferencePlacer) Place(n int) ([]geometry.Vector2D, error) {
	out := make([]geometry.Vector2D, n)
	for i := range out {
		x, y := uniform(p.rng), uniform(p.rng)
		for j := 0; j < i; j++ {
			for out[j].X == x {
				x = uniform(p.rng)
			}
			for out[j].Y == y {
				y = uniform(p.rng)
			}
		}
		out[i] = geometry.Vector2D{X: x, Y: y}
	}
	return out, nil
}

// SpacedPlacer rejection-samples positions at least MinDistance apart.
// After MaxAttempts draws for one agent it keeps the draw farthest from its
// nearest placed neighbour, so placement always succeeds.
type SpacedPlacer struct {
	MinDistance float64
	MaxAttempts int
	rng         *rand.Rand
}

const defaultMaxAttempts = 64

func NewSpacedPlacer(seed uint64, minDistance float64) *SpacedPlacer {
	return &SpacedPlacer{
		MinDistance: minDistance,
		MaxAttempts: defaultMaxAttempts,
		rng:         newRand(seed),
	}
}

func (p *SpacedPlacer) Place(n int) ([]geometry.Vector2D, error) {
	if p.MinDistance < 0 {
		return nil, fmt.Errorf("%w: negative minimum distance %v", ErrPlacement, p.MinDistance)
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	out := make([]geometry.Vector2D, 0, n)
	for len(out) < n {
		var best geometry.Vector2D
		bestGap := -1.0
		for try := 0; try < attempts; try++ {
			candidate := geometry.Vector2D{X: uniform(p.rng), Y: uniform(p.rng)}
			gap := nearestGap(candidate, out)
			if gap > bestGap {
				best, bestGap = candidate, gap
			}
			if gap >= p.MinDistance {
				break
			}
		}
		out = append(out, best)
	}
	return out, nil
}

// nearestGap returns the distance from c to the closest placed point,
// +Inf-like when nothing is placed yet.
func nearestGap(c geometry.Vector2D, placed []geometry.Vector2D) float64 {
	gap := 8.0 // larger than the domain diagonal
	for _, p := range placed {
		if d := c.DistanceTo(p); d < gap {
			gap = d
		}
	}
	return gap
}

// FixedPlacer hands out externally supplied positions.
type FixedPlacer struct {
	Positions []geometry.Vector2D
}

func (p FixedPlacer) Place(n int) ([]geometry.Vector2D, error) {
	if len(p.Positions) != n {
		return nil, fmt.Errorf("%w: %d positions supplied for %d agents", ErrPlacement, len(p.Positions), n)
	}
	out := make([]geometry.Vector2D, n)
	for i, pos := range p.Positions {
		if !pos.IsFinite() || !pos.InBounds(1) {
			return nil, fmt.Errorf("%w: position %d %v is outside [-1,1]²", ErrPlacement, i, pos)
		}
		out[i] = pos
	}
	return out, nil
}
