package flock

import (
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/require"
)

// FuzzTick drives random populations and time steps through Tick and checks
// that the speed bound and the containment invariant survive.
func FuzzTick(f *testing.F) {
	f.Add([]byte{0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2a, 0x05, 0x07})
	f.Add([]byte("a flock of boids over the torus"))

	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		n, err := c.GetInt()
		if err != nil {
			return
		}
		seed, err := c.GetUint64()
		if err != nil {
			return
		}
		steps, err := c.GetInt()
		if err != nil {
			return
		}
		workers, err := c.GetInt()
		if err != nil {
			return
		}
		grid, err := c.GetBool()
		if err != nil {
			return
		}

		n = 1 + abs(n)%64
		steps = 1 + abs(steps)%20
		rules := DefaultRules()
		opts := []Option{WithWorkers(abs(workers) % 5)}
		if grid {
			opts = append(opts, WithNeighborIndex(NewGrid(rules.CohesionRadius)))
		}

		fl, err := New(rules, n, NewSpacedPlacer(seed, 0.01), opts...)
		require.NoError(t, err)

		for s := 0; s < steps; s++ {
			// dt in [0, 2.55] seconds, large steps included
			b, err := c.GetByte()
			if err != nil {
				b = 16
			}
			dt := float64(b) / 100
			require.NoError(t, fl.Tick(dt))
			for i := 0; i < fl.Len(); i++ {
				a := fl.At(i)
				require.LessOrEqual(t, a.Velocity.Len(), rules.MaxSpeed+1e-12)
				require.True(t, a.Position.IsFinite())
				require.True(t, a.Position.InBounds(1), "agent %d at %v", i, a.Position)
			}
		}
	})
}

func abs(v int) int {
	if v < 0 {
		// MinInt has no positive counterpart
		if -v < 0 {
			return 0
		}
		return -v
	}
	return v
}
