// Package window draws the flock as triangles in a resizable ebiten window.
package window

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/ui"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/viewport"
	"go.uber.org/zap"
)

const (
	panelWidth = 220.0
	// maxBatch keeps vertex indices within uint16.
	maxBatch = 65535 / 3
	// maxFrameTime caps the step after a stall, e.g. while the window is dragged.
	maxFrameTime = 100 * time.Millisecond
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	background  = color.RGBA{R: 12, G: 14, B: 22, A: 255}
	domainColor = color.RGBA{R: 60, G: 60, B: 80, A: 255}
	cohesionClr = color.RGBA{R: 50, G: 100, B: 255, A: 60}
	separateClr = color.RGBA{R: 255, G: 80, B: 80, A: 60}
)

func init() {
	whiteImage.Fill(color.White)
}

// Engine is the part of simulation.Engine the window drives.
type Engine interface {
	Tick(ctx context.Context, dt time.Duration) error
	Restart(ctx context.Context) error
	Snapshots() <-chan flock.Snapshot
}

// Game implements ebiten.Game on top of an Engine.
type Game struct {
	ctx    context.Context
	engine Engine
	logger *zap.Logger
	rules  flock.Rules

	panel      *ui.Panel
	timeScale  *ui.Slider
	paused     *ui.Checkbox
	showRadius *ui.Checkbox
	restart    bool

	last       flock.Snapshot
	lastUpdate time.Time
	width      int
	height     int

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation, rolling averages in ms
	updateAvg float64
	drawAvg   float64
}

// New builds the game and its control panel. rules only feed the radius overlay.
func New(ctx context.Context, engine Engine, cfg config.WindowConfig, rules flock.Rules, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Game{
		ctx:    ctx,
		engine: engine,
		logger: logger.Named("window"),
		rules:  rules,
		width:  cfg.Width,
		height: cfg.Height,
	}

	g.panel = ui.NewPanel(10, 10, panelWidth, 190, "Boids")
	g.panel.AddSection("Simulation")
	g.timeScale = g.panel.AddSlider("Time scale", 0, 4, cfg.TimeScale)
	g.paused = g.panel.AddCheckbox("Paused", false)
	g.panel.AddButton("Restart", func() { g.restart = true })
	g.panel.AddSection("Display")
	g.showRadius = g.panel.AddCheckbox("Show radii", cfg.ShowRadius)
	return g
}

// Run opens the window and blocks until it is closed or ESC is pressed.
func Run(ctx context.Context, engine Engine, cfg config.WindowConfig, rules flock.Rules, logger *zap.Logger) error {
	g := New(ctx, engine, cfg, rules, logger)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.logger.Info("window host started", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("window closed with an error: %w", err)
	}
	g.logger.Info("window host stopped", zap.Uint64("tick", g.last.Tick))
	return nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if ebiten.IsKeyPressed(ebiten.KeyEscape) || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if ebiten.IsKeyPressed(ebiten.KeyR) {
		g.restart = true
	}
	g.panel.Update()

	if g.restart {
		g.restart = false
		if err := g.engine.Restart(g.ctx); err != nil {
			g.logger.Error("restart failed", zap.Error(err))
		}
	}

	g.drainSnapshots()

	dt := frameTime(g.lastUpdate, start)
	g.lastUpdate = start
	if g.paused.Value {
		return nil
	}
	if err := g.engine.Tick(g.ctx, scaled(dt, g.timeScale.Value)); err != nil {
		return fmt.Errorf("tick failed: %w", err)
	}
	return nil
}

// drainSnapshots keeps only the newest snapshot waiting on the engine.
func (g *Game) drainSnapshots() {
	for {
		select {
		case snap := <-g.engine.Snapshots():
			g.last = snap
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	b := screen.Bounds()
	vp := viewport.New(b.Dx(), b.Dy())

	x0, y0, x1, y1 := vp.Bounds()
	vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, domainColor, true)

	if g.showRadius.Value {
		g.drawRadii(screen, vp)
	}
	g.drawAgents(screen, vp)
	g.panel.Draw(screen)

	st := g.last.Stats()
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n\nTick: %d\nAgents: %d\nSpeed: %.3f\nPolarization: %.2f",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		st.Tick,
		st.Population,
		st.MeanSpeed,
		st.Polarization)
	ebitenutil.DebugPrintAt(screen, msg, b.Dx()-150, 10)
}

func (g *Game) drawRadii(screen *ebiten.Image, vp viewport.Viewport) {
	cohesion := float32(vp.Length(g.rules.CohesionRadius))
	separation := float32(vp.Length(g.rules.SeparationRadius))
	for _, a := range g.last.Agents {
		x, y := vp.ToScreen(a.Position)
		vector.StrokeCircle(screen, float32(x), float32(y), cohesion, 1, cohesionClr, true)
		vector.StrokeCircle(screen, float32(x), float32(y), separation, 1, separateClr, true)
	}
}

// drawAgents batches every agent triangle into as few draw calls as indices allow.
func (g *Game) drawAgents(screen *ebiten.Image, vp viewport.Viewport) {
	agents := g.last.Agents
	top := g.last.Stats().TopSpeed
	for start := 0; start < len(agents); start += maxBatch {
		end := min(start+maxBatch, len(agents))
		g.vertices, g.indices = appendTriangles(g.vertices[:0], g.indices[:0], vp, agents[start:end], top)
		screen.DrawTriangles(g.vertices, g.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
	}
}

// Layout follows the window size so the domain square rescales on resize.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// appendTriangles adds one shaded triangle per agent, colored by speed
// relative to topSpeed.
func appendTriangles(vertices []ebiten.Vertex, indices []uint16, vp viewport.Viewport, agents []flock.AgentState, topSpeed float64) ([]ebiten.Vertex, []uint16) {
	for _, a := range agents {
		r, gr, b := speedColor(a.Velocity.Len(), topSpeed)
		base := uint16(len(vertices))
		for _, p := range vp.Triangle(a.Position, a.Heading) {
			vertices = append(vertices, ebiten.Vertex{
				DstX: float32(p.X), DstY: float32(p.Y),
				SrcX: 1, SrcY: 1,
				ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
			})
		}
		indices = append(indices, base, base+1, base+2)
	}
	return vertices, indices
}

// speedColor fades from blue for idle agents to white at top speed.
func speedColor(speed, topSpeed float64) (r, g, b float32) {
	ratio := 1.0
	if topSpeed > 0 {
		ratio = max(0, min(speed/topSpeed, 1))
	}
	c := float32(0.3 + 0.7*ratio)
	return c, c, 1
}

// frameTime is the wall-clock time since the previous update, zero on the
// first frame and capped at maxFrameTime.
func frameTime(prev, now time.Time) time.Duration {
	if prev.IsZero() {
		return 0
	}
	return min(max(now.Sub(prev), 0), maxFrameTime)
}

func scaled(dt time.Duration, scale float64) time.Duration {
	if scale <= 0 {
		return 0
	}
	return time.Duration(float64(dt) * scale)
}
