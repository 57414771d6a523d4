package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
)

// Widget is implemented by everything a Panel can hold.
type Widget interface {
	HandleInput(in Input)
	Draw(screen *ebiten.Image)
}

// entry places a widget inside the panel.
type entry struct {
	widget Widget
	label  string
	height float64
	// setY moves the widget to its on-screen row before it handles input or draws.
	setY func(y float64)
}

// Section groups widgets under a header.
type Section struct {
	Title   string
	entries []entry
}

// Panel is a scrollable column of widget sections.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []*Section
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; following Add* calls land in it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, &Section{Title: title})
}

func (p *Panel) current() *Section {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	return p.sections[len(p.sections)-1]
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.current().entries = append(p.current().entries, entry{
		widget: s,
		label:  label,
		height: labelHeight + s.H + 10,
		setY:   func(y float64) { s.Y = y + labelHeight },
	})
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.current().entries = append(p.current().entries, entry{
		widget: c,
		height: c.Size + 8,
		setY:   func(y float64) { c.Y = y },
	})
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 18, label, onClick)
	p.current().entries = append(p.current().entries, entry{
		widget: b,
		height: b.Height + 8,
		setY:   func(y float64) { b.Y = y },
	})
	return b
}

// ContentHeight is the height of everything in the panel, scrolled or not.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		for _, e := range s.entries {
			h += e.height
		}
	}
	return h
}

// Contains reports whether a point lies on the panel, so hosts can ignore
// clicks meant for it.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// layout walks every visible entry with its on-screen row.
func (p *Panel) layout(visit func(e entry, y float64), header func(title string, y float64)) {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if header != nil && y >= p.Y && y+sectionHeight <= p.Y+p.Height {
			header(s.Title, y)
		}
		y += sectionHeight
		for _, e := range s.entries {
			if y >= p.Y && y+e.height <= p.Y+p.Height {
				visit(e, y)
			}
			y += e.height
		}
	}
}

// HandleInput scrolls on the wheel and forwards the pointer to the visible widgets.
func (p *Panel) HandleInput(in Input) {
	if in.WheelDY != 0 && p.Contains(in.X, in.Y) {
		p.ScrollOffset -= in.WheelDY * 20
		maxScroll := max(0, p.ContentHeight()-p.Height)
		p.ScrollOffset = max(0, min(p.ScrollOffset, maxScroll))
	}
	p.layout(func(e entry, y float64) {
		e.setY(y)
		e.widget.HandleInput(in)
	}, nil)
}

// Update polls ebiten input.
func (p *Panel) Update() { p.HandleInput(PollInput()) }

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	p.layout(func(e entry, y float64) {
		e.setY(y)
		if e.label != "" {
			ebitenutil.DebugPrintAt(screen, e.label, int(p.X+10), int(y))
		}
		if c, ok := e.widget.(*Checkbox); ok {
			ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(y))
		}
		e.widget.Draw(screen)
	}, func(title string, y float64) {
		vector.FillRect(screen,
			float32(p.X+5), float32(y),
			float32(p.Width-10), 20,
			color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
		ebitenutil.DebugPrintAt(screen, title, int(p.X+10), int(y+3))
	})
}
