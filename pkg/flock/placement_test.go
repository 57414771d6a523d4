package flock

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencePlacer(t *testing.T) {
	positions, err := NewReferencePlacer(42).Place(500)
	require.NoError(t, err)
	require.Len(t, positions, 500)

	xs := make(map[float64]bool, len(positions))
	ys := make(map[float64]bool, len(positions))
	for i, p := range positions {
		assert.True(t, p.InBounds(1), "position %d %v out of bounds", i, p)
		assert.False(t, xs[p.X], "position %d repeats x=%v", i, p.X)
		assert.False(t, ys[p.Y], "position %d repeats y=%v", i, p.Y)
		xs[p.X], ys[p.Y] = true, true
	}

	again, err := NewReferencePlacer(42).Place(500)
	require.NoError(t, err)
	assert.Equal(t, positions, again, "same seed must give the same placement")

	other, err := NewReferencePlacer(43).Place(500)
	require.NoError(t, err)
	assert.NotEqual(t, positions, other)
}

func TestSpacedPlacer(t *testing.T) {
	t.Run("honours the minimum distance when there is room", func(t *testing.T) {
		positions, err := NewSpacedPlacer(7, 0.1).Place(50)
		require.NoError(t, err)
		require.Len(t, positions, 50)
		for i := range positions {
			assert.True(t, positions[i].InBounds(1))
			for j := i + 1; j < len(positions); j++ {
				assert.GreaterOrEqual(t, positions[i].DistanceTo(positions[j]), 0.1, "agents %d and %d", i, j)
			}
		}
	})

	t.Run("falls back to the best candidate when crowded", func(t *testing.T) {
		p := NewSpacedPlacer(7, 1.5)
		p.MaxAttempts = 4
		positions, err := p.Place(20)
		require.NoError(t, err)
		assert.Len(t, positions, 20)
		for _, pos := range positions {
			assert.True(t, pos.InBounds(1))
		}
	})

	t.Run("zero attempts still draws once", func(t *testing.T) {
		p := NewSpacedPlacer(7, 0.1)
		p.MaxAttempts = 0
		positions, err := p.Place(3)
		require.NoError(t, err)
		assert.Len(t, positions, 3)
	})

	t.Run("negative distance is rejected", func(t *testing.T) {
		_, err := NewSpacedPlacer(7, -0.1).Place(3)
		assert.ErrorIs(t, err, ErrPlacement)
	})
}

func TestFixedPlacer(t *testing.T) {
	want := []geometry.Vector2D{vec(-1, -1), vec(0, 0), vec(1, 1)}

	got, err := FixedPlacer{Positions: want}.Place(3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got[0] = vec(0.5, 0.5)
	assert.Equal(t, vec(-1, -1), want[0], "placed positions must not alias the input")
}
