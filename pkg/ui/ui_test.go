package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func press(x, y float64) Input { return Input{X: x, Y: y, Pressed: true} }

func TestSlider_HandleInput(t *testing.T) {
	s := NewSlider(0, 0, 100, "Time scale", 0, 4, 1)
	assert.Equal(t, 0.25, s.Ratio())

	s.HandleInput(press(50, 5))
	assert.Equal(t, 2.0, s.Value)

	// the drag continues outside the bar and clamps
	s.HandleInput(press(150, 40))
	assert.Equal(t, 4.0, s.Value)

	s.HandleInput(Input{X: 10, Y: 5})
	s.HandleInput(press(-10, 40))
	assert.Equal(t, 4.0, s.Value, "a press outside the bar must not start a drag")

	assert.Equal(t, 1.0, NewSlider(0, 0, 100, "", 1, 2, -3).Value, "initial value is clamped")
}

func TestCheckbox_TogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(10, 10, "Paused", false)

	c.HandleInput(press(15, 15))
	c.HandleInput(press(15, 15))
	assert.True(t, c.Value)

	c.HandleInput(Input{X: 15, Y: 15})
	c.HandleInput(press(15, 15))
	assert.False(t, c.Value)

	c.HandleInput(press(100, 100))
	assert.False(t, c.Value)
}

func TestButton_FiresOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 50, 20, "Restart", func() { clicks++ })

	b.HandleInput(press(10, 10))
	b.HandleInput(press(10, 10))
	b.HandleInput(Input{X: 10, Y: 10})
	b.HandleInput(press(10, 10))
	b.HandleInput(press(80, 10))

	assert.Equal(t, 2, clicks)
}

func TestPanel_LaysOutAndForwardsInput(t *testing.T) {
	p := NewPanel(10, 10, 280, 400, "Boids")
	p.AddSection("Simulation")
	speed := p.AddSlider("Time scale", 0, 4, 1)
	paused := p.AddCheckbox("Paused", false)
	restarts := 0
	p.AddButton("Restart", func() { restarts++ })

	// section header at y=40, slider row at y=65 with its bar 15px lower
	p.HandleInput(press(150, 85))
	assert.Equal(t, 2.0, speed.Value)
	assert.Equal(t, 80.0, speed.Y)
	p.HandleInput(Input{})

	p.HandleInput(press(25, 105))
	assert.True(t, paused.Value)
	p.HandleInput(Input{})

	p.HandleInput(press(100, 130))
	assert.Equal(t, 1, restarts)

	assert.Equal(t, 30.0+25+37+24+26, p.ContentHeight())
}

func TestPanel_Scroll(t *testing.T) {
	p := NewPanel(0, 0, 200, 100, "Boids")
	p.AddSection("Many")
	for i := 0; i < 10; i++ {
		p.AddCheckbox("option", false)
	}
	maxScroll := p.ContentHeight() - p.Height

	p.HandleInput(Input{X: 50, Y: 50, WheelDY: -100})
	assert.Equal(t, maxScroll, p.ScrollOffset)

	p.HandleInput(Input{X: 50, Y: 50, WheelDY: 100})
	assert.Equal(t, 0.0, p.ScrollOffset)

	p.HandleInput(Input{X: 500, Y: 50, WheelDY: -1})
	assert.Equal(t, 0.0, p.ScrollOffset, "the wheel only scrolls when over the panel")
}

func TestPanel_Contains(t *testing.T) {
	p := NewPanel(10, 10, 100, 100, "")
	assert.True(t, p.Contains(10, 10))
	assert.True(t, p.Contains(110, 110))
	assert.False(t, p.Contains(111, 50))
}
