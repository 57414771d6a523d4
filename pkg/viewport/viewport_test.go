package viewport

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/stretchr/testify/assert"
)

func TestViewport_ToScreen(t *testing.T) {
	tests := []struct {
		name   string
		v      Viewport
		p      geometry.Vector2D
		wx, wy float64
	}{
		{"centre of a square window", New(200, 200), geometry.Vector2D{}, 100, 100},
		{"top left corner", New(200, 200), geometry.Vector2D{X: -1, Y: 1}, 0, 0},
		{"bottom right corner", New(200, 200), geometry.Vector2D{X: 1, Y: -1}, 200, 200},
		{"wide window is letterboxed", New(800, 600), geometry.Vector2D{X: -1, Y: 1}, 100, 0},
		{"tall window is letterboxed", New(600, 800), geometry.Vector2D{X: 1, Y: -1}, 600, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.v.ToScreen(tt.p)
			assert.InDelta(t, tt.wx, x, 1e-9)
			assert.InDelta(t, tt.wy, y, 1e-9)
		})
	}
}

func TestViewport_ToWorldInvertsToScreen(t *testing.T) {
	v := New(1024, 768)
	p := geometry.Vector2D{X: 0.3, Y: -0.7}

	x, y := v.ToScreen(p)
	back := v.ToWorld(x, y)

	assert.True(t, back.Eq(p), "got %v", back)
	assert.Equal(t, geometry.Zero, New(0, 0).ToWorld(10, 10))
}

func TestViewport_LengthAndBounds(t *testing.T) {
	v := New(800, 600)
	assert.InDelta(t, 60.0, v.Length(0.2), 1e-12)

	x0, y0, x1, y1 := v.Bounds()
	assert.Equal(t, []float64{100, 0, 700, 600}, []float64{x0, y0, x1, y1})
}

func TestViewport_Triangle(t *testing.T) {
	v := New(200, 200)

	t.Run("heading zero points up the screen", func(t *testing.T) {
		tri := v.Triangle(geometry.Vector2D{}, 0)
		assert.True(t, tri[0].Eq(geometry.Vector2D{X: 100, Y: 95}), "tip %v", tri[0])
		assert.True(t, tri[1].Eq(geometry.Vector2D{X: 95, Y: 105}), "left %v", tri[1])
		assert.True(t, tri[2].Eq(geometry.Vector2D{X: 105, Y: 105}), "right %v", tri[2])
	})

	t.Run("tip follows the velocity", func(t *testing.T) {
		vel := geometry.Vector2D{X: 1, Y: 0}
		tri := v.Triangle(geometry.Vector2D{}, vel.Heading())
		// moving right in the domain is moving right on screen
		assert.InDelta(t, 105, tri[0].X, 1e-9)
		assert.InDelta(t, 100, tri[0].Y, 1e-9)
	})

	t.Run("triangle is centred on the agent", func(t *testing.T) {
		pos := geometry.Vector2D{X: 0.5, Y: 0.5}
		tri := v.Triangle(pos, 1.234)
		cx, cy := v.ToScreen(pos)
		for _, p := range tri {
			assert.LessOrEqual(t, math.Hypot(p.X-cx, p.Y-cy), math.Sqrt(50)+1e-9)
		}
	})
}

func TestGrid_Cell(t *testing.T) {
	g := Grid{Cols: 80, Rows: 24}
	tests := []struct {
		name     string
		p        geometry.Vector2D
		col, row int
	}{
		{"top left", geometry.Vector2D{X: -1, Y: 1}, 0, 0},
		{"bottom right edge is clamped", geometry.Vector2D{X: 1, Y: -1}, 79, 23},
		{"centre", geometry.Vector2D{}, 40, 12},
		{"just left of centre", geometry.Vector2D{X: -0.01, Y: 0.01}, 39, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := g.Cell(tt.p)
			assert.True(t, ok)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.row, row)
		})
	}

	_, _, ok := Grid{}.Cell(geometry.Vector2D{})
	assert.False(t, ok)
}

func TestArrow(t *testing.T) {
	tests := []struct {
		vel  geometry.Vector2D
		want rune
	}{
		{geometry.Vector2D{X: 0, Y: 1}, '↑'},
		{geometry.Vector2D{X: 1, Y: 1}, '↗'},
		{geometry.Vector2D{X: 1, Y: 0}, '→'},
		{geometry.Vector2D{X: 1, Y: -1}, '↘'},
		{geometry.Vector2D{X: 0, Y: -1}, '↓'},
		{geometry.Vector2D{X: -1, Y: -1}, '↙'},
		{geometry.Vector2D{X: -1, Y: 0}, '←'},
		{geometry.Vector2D{X: -1, Y: 1}, '↖'},
		{geometry.Vector2D{X: 0.1, Y: 1}, '↑'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(Arrow(tt.vel.Heading())), "velocity %v", tt.vel)
	}
}
