// Package viewport maps the flock domain [-1,1]² onto screens.
//
// The domain is drawn as the largest centred square that fits the screen,
// so agents keep their proportions whatever the window aspect ratio.
// Screen y grows downwards, domain y grows upwards.
package viewport

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// agentShape is the agent triangle in pixels, pointing up (+y) before rotation.
var agentShape = [3]geometry.Vector2D{
	{X: 0, Y: 5},   // top
	{X: -5, Y: -5}, // bottom left
	{X: 5, Y: -5},  // bottom right
}

// Viewport is a pixel surface of Width x Height.
type Viewport struct {
	Width  int
	Height int
}

func New(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

// Scale is the number of pixels per domain unit.
func (v Viewport) Scale() float64 {
	return float64(min(v.Width, v.Height)) / 2
}

func (v Viewport) center() (float64, float64) {
	return float64(v.Width) / 2, float64(v.Height) / 2
}

// ToScreen maps a domain point to pixel coordinates.
func (v Viewport) ToScreen(p geometry.Vector2D) (float64, float64) {
	cx, cy := v.center()
	s := v.Scale()
	return cx + p.X*s, cy - p.Y*s
}

// ToWorld maps pixel coordinates back to the domain. Points outside the
// drawn square map outside [-1,1]².
func (v Viewport) ToWorld(x, y float64) geometry.Vector2D {
	s := v.Scale()
	if s == 0 {
		return geometry.Zero
	}
	cx, cy := v.center()
	return geometry.Vector2D{X: (x - cx) / s, Y: (cy - y) / s}
}

// Length converts a domain length, such as a radius, to pixels.
func (v Viewport) Length(d float64) float64 {
	return d * v.Scale()
}

// Bounds returns the pixel rectangle covered by the domain.
func (v Viewport) Bounds() (x0, y0, x1, y1 float64) {
	x0, y0 = v.ToScreen(geometry.Vector2D{X: -1, Y: 1})
	x1, y1 = v.ToScreen(geometry.Vector2D{X: 1, Y: -1})
	return x0, y0, x1, y1
}

// Triangle returns the three pixel vertices of an agent at pos, rotated so
// its tip points along heading, where heading is atan2(vx, vy).
func (v Viewport) Triangle(pos geometry.Vector2D, heading float64) [3]geometry.Vector2D {
	x, y := v.ToScreen(pos)
	var out [3]geometry.Vector2D
	for i, vert := range agentShape {
		r := vert.Rotate(heading)
		out[i] = geometry.Vector2D{X: x + r.X, Y: y - r.Y}
	}
	return out
}

// Grid is a character surface of Cols x Rows cells.
type Grid struct {
	Cols int
	Rows int
}

// Cell maps a domain point to a cell. ok is false when the grid is empty.
// Points on the domain edge land in the outermost cells.
func (g Grid) Cell(p geometry.Vector2D) (col, row int, ok bool) {
	if g.Cols <= 0 || g.Rows <= 0 {
		return 0, 0, false
	}
	col = int(math.Floor((p.X + 1) / 2 * float64(g.Cols)))
	row = int(math.Floor((1 - p.Y) / 2 * float64(g.Rows)))
	return clamp(col, g.Cols-1), clamp(row, g.Rows-1), true
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}

var arrows = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// Arrow returns the arrow glyph closest to heading (0 is up, clockwise).
func Arrow(heading float64) rune {
	sector := int(math.Round(heading/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return arrows[sector]
}
