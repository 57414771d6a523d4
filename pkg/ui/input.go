package ui

import "github.com/hajimehoshi/ebiten/v2"

// Input is the pointer state widgets react to during one frame.
type Input struct {
	X, Y    float64
	Pressed bool    // left mouse button held
	WheelDY float64 // vertical wheel delta
}

// PollInput reads the current mouse state from ebiten.
func PollInput() Input {
	mx, my := ebiten.CursorPosition()
	_, dy := ebiten.Wheel()
	return Input{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		WheelDY: dy,
	}
}

// over reports whether the pointer lies inside the given rectangle.
func (in Input) over(x, y, w, h float64) bool {
	return in.X >= x && in.X <= x+w && in.Y >= y && in.Y <= y+h
}
