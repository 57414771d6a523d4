package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal bar selecting a value in [Min, Max].
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64

	dragging bool
}

// NewSlider creates a slider; value is clamped to [min, max].
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     12,
	}
	s.SetValue(value)
	return s
}

// SetValue clamps v to the slider range.
func (s *Slider) SetValue(v float64) {
	s.Value = max(s.Min, min(v, s.Max))
}

// Ratio returns the position of Value in the range, 0 at Min and 1 at Max.
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// HandleInput starts a drag on a press inside the bar and follows the pointer
// until release, even when it leaves the bar.
func (s *Slider) HandleInput(in Input) {
	if !in.Pressed {
		s.dragging = false
		return
	}
	if !s.dragging && !in.over(s.X, s.Y, s.W, s.H) {
		return
	}
	s.dragging = true
	if s.W > 0 {
		s.SetValue(s.Min + (in.X-s.X)/s.W*(s.Max-s.Min))
	}
}

// Update polls ebiten input.
func (s *Slider) Update() { s.HandleInput(PollInput()) }

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
