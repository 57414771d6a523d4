package flock

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Flock owns a fixed population of agents and advances it one tick at a time.
//
// A tick runs in two phases: every new velocity is computed from the pre-tick
// population into a buffer, then velocities are committed and positions
// integrated. No agent ever observes a neighbour state from the current tick.
// A Flock is not safe for concurrent use; hosts serialise access to it.
type Flock struct {
	rules   *Rules
	agents  []*Agent
	next    []geometry.Vector2D
	index   NeighborIndex
	workers int
	ticks   uint64
	logger  *zap.Logger
}

// Snapshot is a value copy of a flock at a given tick.
type Snapshot struct {
	Tick   uint64       `json:"tick"`
	Agents []AgentState `json:"agents"`
}

// Option configures a Flock at construction.
type Option func(*Flock)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Flock) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithNeighborIndex replaces the default BruteForce scan.
func WithNeighborIndex(index NeighborIndex) Option {
	return func(f *Flock) {
		if index != nil {
			f.index = index
		}
	}
}

// WithWorkers splits the velocity phase over k goroutines. k <= 1 keeps it serial.
func WithWorkers(k int) Option {
	return func(f *Flock) {
		f.workers = k
	}
}

// New places n agents with placer and returns the flock.
// A nil placer uses a ReferencePlacer with a random seed.
func New(rules Rules, n int, placer Placer, opts ...Option) (*Flock, error) {
	if n < 1 {
		return nil, configErrorf("population", "must be >= 1, got %d", n)
	}
	if placer == nil {
		placer = NewReferencePlacer(rand.Uint64())
	}
	positions, err := placer.Place(n)
	if err != nil {
		return nil, fmt.Errorf("failed to place %d agents: %w", n, err)
	}
	if len(positions) != n {
		return nil, fmt.Errorf("%w: placer returned %d positions for %d agents", ErrPlacement, len(positions), n)
	}

	states := make([]AgentState, n)
	for i, pos := range positions {
		states[i] = AgentState{Position: pos, Velocity: initialVelocity.Limit(rules.MaxSpeed)}
	}
	return FromStates(rules, states, opts...)
}

// FromStates builds a flock whose agents start from the given states, in order.
// Headings are recomputed from the velocities.
func FromStates(rules Rules, states []AgentState, opts ...Option) (*Flock, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(states) < 1 {
		return nil, configErrorf("population", "must be >= 1, got %d", len(states))
	}

	f := &Flock{
		rules:   &rules,
		agents:  make([]*Agent, len(states)),
		next:    make([]geometry.Vector2D, len(states)),
		index:   &BruteForce{},
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if g, ok := f.index.(*Grid); ok && !(g.CellSize() >= rules.senseRadius()) {
		return nil, configErrorf("index", "grid cell size %v is smaller than the largest radius %v", g.CellSize(), rules.senseRadius())
	}

	for i, s := range states {
		if !s.Position.IsFinite() || !s.Position.InBounds(1) {
			return nil, configErrorf("agents", "agent %d position %v is outside [-1,1]²", i, s.Position)
		}
		if !s.Velocity.IsFinite() {
			return nil, configErrorf("agents", "agent %d velocity %v is not finite", i, s.Velocity)
		}
		f.agents[i] = newAgent(s.Position, s.Velocity, f.rules)
	}

	f.logger.Debug("flock created",
		zap.Int("population", len(f.agents)),
		zap.Float64("separationRadius", rules.SeparationRadius),
		zap.Float64("cohesionRadius", rules.CohesionRadius),
		zap.Float64("maxSpeed", rules.MaxSpeed),
		zap.Int("workers", f.workers),
	)
	return f, nil
}

// Rules returns the tunables shared by the flock's agents.
func (f *Flock) Rules() Rules { return *f.rules }

// Len returns the population size.
func (f *Flock) Len() int { return len(f.agents) }

// At returns a copy of the state of the agent at index i.
func (f *Flock) At(i int) AgentState { return f.agents[i].State() }

// Ticks returns the number of ticks applied so far.
func (f *Flock) Ticks() uint64 { return f.ticks }

// Tick advances the whole population by dt seconds.
func (f *Flock) Tick(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeStep, dt)
	}

	f.index.Rebuild(f.agents)
	if err := f.computeVelocities(); err != nil {
		f.logger.Error("velocity pass failed", zap.Uint64("tick", f.ticks), zap.Error(err))
		return err
	}

	// Barrier passed: every velocity was computed from the pre-tick state.
	for i, a := range f.agents {
		a.vel = f.next[i]
		a.UpdatePosition(dt)
	}
	f.ticks++
	return nil
}

func (f *Flock) computeVelocities() error {
	n := len(f.agents)
	if f.workers <= 1 || n < 2 {
		f.computeRange(0, n)
		return nil
	}

	chunk := (n + f.workers - 1) / f.workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			f.computeRange(start, end)
			return nil
		})
	}
	return g.Wait()
}

func (f *Flock) computeRange(start, end int) {
	for i := start; i < end; i++ {
		a := f.agents[i]
		f.next[i] = a.ComputeVelocity(f.index.Candidates(a))
	}
}

// Snapshot copies the current state of every agent.
func (f *Flock) Snapshot() Snapshot {
	s := Snapshot{
		Tick:   f.ticks,
		Agents: make([]AgentState, len(f.agents)),
	}
	for i, a := range f.agents {
		s.Agents[i] = a.State()
	}
	return s
}
