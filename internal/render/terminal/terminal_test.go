package terminal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine ticks a local flock synchronously.
type fakeEngine struct {
	mu       sync.Mutex
	flock    *flock.Flock
	ch       chan flock.Snapshot
	ticks    int
	restarts int
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	f, err := flock.New(flock.DefaultRules(), 12, flock.NewReferencePlacer(5))
	require.NoError(t, err)
	return &fakeEngine{flock: f, ch: make(chan flock.Snapshot, 1)}
}

func (e *fakeEngine) Tick(_ context.Context, dt time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.flock.Tick(dt.Seconds()); err != nil {
		return err
	}
	e.ticks++
	select {
	case e.ch <- e.flock.Snapshot():
	default:
	}
	return nil
}

func (e *fakeEngine) Restart(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restarts++
	return nil
}

func (e *fakeEngine) Snapshots() <-chan flock.Snapshot { return e.ch }

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHost_Draw(t *testing.T) {
	screen := newScreen(t, 20, 11)
	h := New(screen, newFakeEngine(t), config.TerminalConfig{FPS: 30, TimeScale: 1}, nil)
	h.last = flock.Snapshot{Tick: 7, Agents: []flock.AgentState{
		{Position: geometry.Vector2D{}, Velocity: geometry.Vector2D{Y: 0.2}, Heading: 0},
		{Position: geometry.Vector2D{X: -1, Y: 1}, Velocity: geometry.Vector2D{X: 0.1}, Heading: geometry.Vector2D{X: 0.1}.Heading()},
	}}

	h.draw()

	r, _, _, _ := screen.GetContent(10, 5)
	assert.Equal(t, "↑", string(r))
	r, _, _, _ = screen.GetContent(0, 0)
	assert.Equal(t, "→", string(r))

	var status []rune
	for x := 0; x < 8; x++ {
		r, _, _, _ := screen.GetContent(x, 10)
		status = append(status, r)
	}
	assert.Equal(t, " tick 7 ", string(status))
}

func TestHost_HandleEvent(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine(t)
	h := New(newScreen(t, 40, 20), engine, config.TerminalConfig{FPS: 30, TimeScale: 1}, nil)

	assert.False(t, h.handleEvent(ctx, key(' ')))
	assert.True(t, h.paused)

	assert.False(t, h.handleEvent(ctx, key('+')))
	assert.Equal(t, 2.0, h.timeScale)
	assert.False(t, h.handleEvent(ctx, key('-')))
	assert.False(t, h.handleEvent(ctx, key('-')))
	assert.Equal(t, 0.5, h.timeScale)

	assert.False(t, h.handleEvent(ctx, key('r')))
	assert.Equal(t, 1, engine.restarts)

	assert.False(t, h.handleEvent(ctx, key('x')))
	assert.True(t, h.handleEvent(ctx, key('q')))
	assert.True(t, h.handleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestHost_StepHonoursPauseAndScale(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine(t)
	h := New(newScreen(t, 40, 20), engine, config.TerminalConfig{FPS: 30, TimeScale: 0}, nil)

	before := engine.flock.Snapshot()
	require.NoError(t, h.step(ctx, 20*time.Millisecond))
	assert.Equal(t, 1, engine.ticks)
	assert.Equal(t, uint64(1), h.last.Tick)
	// a zero time scale freezes positions but still ticks
	for i, a := range h.last.Agents {
		assert.Equal(t, before.Agents[i].Position, a.Position)
	}

	h.paused = true
	require.NoError(t, h.step(ctx, 20*time.Millisecond))
	assert.Equal(t, 1, engine.ticks)
}

func TestHost_StepKeepsTheNewestSnapshot(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine(t)
	engine.ch = make(chan flock.Snapshot, 4)
	h := New(newScreen(t, 40, 20), engine, config.TerminalConfig{FPS: 30, TimeScale: 1}, nil)

	// an answer that arrived after the previous frame gave up waiting
	engine.ch <- flock.Snapshot{Tick: 41}
	engine.ch <- flock.Snapshot{Tick: 42}

	require.NoError(t, h.step(ctx, 10*time.Millisecond))
	assert.Equal(t, uint64(1), h.last.Tick, "the snapshot of this tick must win over stale ones")
	assert.Empty(t, engine.ch)
}

func TestHost_RunQuitsOnKey(t *testing.T) {
	screen := newScreen(t, 40, 20)
	engine := newFakeEngine(t)
	h := New(screen, engine, config.TerminalConfig{FPS: 200, TimeScale: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	require.NoError(t, h.Run(ctx))
	assert.NoError(t, ctx.Err(), "Run should return on the key, not on the deadline")
}

func TestHost_RunStopsWithContext(t *testing.T) {
	h := New(newScreen(t, 40, 20), newFakeEngine(t), config.TerminalConfig{FPS: 100, TimeScale: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, h.Run(ctx))
}
