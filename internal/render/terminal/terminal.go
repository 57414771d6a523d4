// Package terminal draws the flock as heading arrows in a character grid.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/viewport"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxTimeScale = 8.0
	// snapshotWait bounds how long a frame waits for the world to answer a tick.
	snapshotWait = time.Second
)

// Engine is the part of simulation.Engine the terminal host drives.
type Engine interface {
	Tick(ctx context.Context, dt time.Duration) error
	Restart(ctx context.Context) error
	Snapshots() <-chan flock.Snapshot
}

// Host renders frames at a fixed rate and forwards key presses.
//
// Keys: ESC or q quits, space pauses, r restarts, + and - change the time scale.
type Host struct {
	screen    tcell.Screen
	engine    Engine
	limiter   *rate.Limiter
	logger    *zap.Logger
	timeScale float64
	paused    bool
	last      flock.Snapshot
}

// New creates a host. The caller owns the screen: it must be initialised
// before Run and finalised after it.
func New(screen tcell.Screen, engine Engine, cfg config.TerminalConfig, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	scale := cfg.TimeScale
	if scale < 0 {
		scale = 1
	}
	return &Host{
		screen:    screen,
		engine:    engine,
		limiter:   rate.NewLimiter(rate.Limit(fps), 1),
		logger:    logger.Named("terminal"),
		timeScale: scale,
	}
}

// Run loops until a quit key is pressed or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return // screen finalised
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	h.logger.Info("terminal host started")
	lastFrame := time.Now()
	for {
		if err := h.limiter.Wait(ctx); err != nil {
			// ctx is done, or its deadline falls before the next frame
			h.logger.Info("terminal host stopped", zap.Uint64("tick", h.last.Tick))
			return nil
		}

		for pending := true; pending; {
			select {
			case ev := <-events:
				if h.handleEvent(ctx, ev) {
					h.logger.Info("terminal host stopped", zap.Uint64("tick", h.last.Tick))
					return nil
				}
			default:
				pending = false
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame)
		lastFrame = now
		if err := h.step(ctx, dt); err != nil {
			return err
		}
		h.draw()
	}
}

// step advances the world by the scaled frame time and waits for its snapshot.
func (h *Host) step(ctx context.Context, dt time.Duration) error {
	if h.paused {
		return nil
	}
	if err := h.engine.Tick(ctx, time.Duration(float64(dt)*h.timeScale)); err != nil {
		return fmt.Errorf("tick failed: %w", err)
	}
	select {
	case snap := <-h.engine.Snapshots():
		h.last = snap
		h.drainSnapshots()
	case <-ctx.Done():
	case <-time.After(snapshotWait):
		h.logger.Warn("no snapshot from the world, keeping the previous frame")
	}
	return nil
}

// drainSnapshots keeps only the newest snapshot waiting on the engine, so a
// late answer to an earlier tick never leaves the display a frame behind.
func (h *Host) drainSnapshots() {
	for {
		select {
		case snap := <-h.engine.Snapshots():
			h.last = snap
		default:
			return
		}
	}
}

// handleEvent applies one input event and reports whether the host must quit.
func (h *Host) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() != tcell.KeyRune:
			return false
		}
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			h.paused = !h.paused
		case '+':
			h.timeScale = min(h.timeScale*2, maxTimeScale)
			if h.timeScale == 0 {
				h.timeScale = 0.25
			}
		case '-':
			h.timeScale /= 2
		case 'r':
			if err := h.engine.Restart(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return true
				}
				h.logger.Error("restart failed", zap.Error(err))
				return false
			}
			h.drainSnapshots()
		}
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return false
}

// draw renders the last snapshot plus a status line on the bottom row.
func (h *Host) draw() {
	h.screen.Clear()
	cols, rows := h.screen.Size()
	if rows < 2 {
		h.screen.Show()
		return
	}
	grid := viewport.Grid{Cols: cols, Rows: rows - 1}
	st := h.last.Stats()
	for _, a := range h.last.Agents {
		col, row, ok := grid.Cell(a.Position)
		if !ok {
			continue
		}
		ratio := 1.0
		if st.TopSpeed > 0 {
			ratio = a.Velocity.Len() / st.TopSpeed
		}
		h.screen.SetContent(col, row, viewport.Arrow(a.Heading), nil, speedStyle(ratio))
	}

	status := fmt.Sprintf(" tick %d  agents %d  speed %.3f  polarization %.2f  x%.2f", st.Tick, st.Population, st.MeanSpeed, st.Polarization, h.timeScale)
	if h.paused {
		status += "  [paused]"
	}
	line := []rune(status)
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		h.screen.SetContent(x, rows-1, r, nil, statusStyle)
	}
	h.screen.Show()
}

// speedStyle shades slow agents blue and fast ones white.
func speedStyle(ratio float64) tcell.Style {
	ratio = max(0, min(ratio, 1))
	c := int32(80 + 175*ratio)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(c, c, 255))
}
