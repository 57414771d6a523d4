package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	systemName        = "boids"
	worldName         = "world"
	defaultAskTimeout = 5 * time.Second
	snapshotBuffer    = 4
)

// ErrWorld is wrapped around failures reported by the world actor.
var ErrWorld = errors.New("simulation: world request failed")

// Engine runs a flock inside an actor system so render loops on other
// goroutines can drive it without sharing memory.
type Engine struct {
	system     actor.ActorSystem
	world      *actor.PID
	snapshots  chan flock.Snapshot
	logger     *zap.Logger
	askTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	askTimeout time.Duration
	build      BuildFunc
}

// WithAskTimeout bounds synchronous requests to the world.
func WithAskTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d > 0 {
			o.askTimeout = d
		}
	}
}

// WithBuilder replaces the flock factory derived from the configuration.
func WithBuilder(build BuildFunc) EngineOption {
	return func(o *engineOptions) {
		if build != nil {
			o.build = build
		}
	}
}

// NewEngine starts an actor system hosting the flock described by cfg.
// The system is stopped again if the world cannot be spawned.
func NewEngine(ctx context.Context, cfg *flock.Config, logger *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := engineOptions{askTimeout: defaultAskTimeout}
	if cfg != nil {
		o.build = func() (*flock.Flock, error) { return cfg.Build(logger) }
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.build == nil {
		return nil, errors.New("simulation: no flock configuration")
	}

	system, err := actor.NewActorSystem(systemName,
		actor.WithLogger(actorLogger(logger)),
		actor.WithActorInitMaxRetries(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	snapshots := make(chan flock.Snapshot, snapshotBuffer)
	world, err := system.Spawn(ctx, worldName, NewWorldActor(o.build, snapshots, logger))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	return &Engine{
		system:     system,
		world:      world,
		snapshots:  snapshots,
		logger:     logger,
		askTimeout: o.askTimeout,
	}, nil
}

// actorLogger lets goakt talk only when the application runs at debug level.
func actorLogger(logger *zap.Logger) golog.Logger {
	if logger.Core().Enabled(zapcore.DebugLevel) {
		return golog.DefaultLogger
	}
	return golog.DiscardLogger
}

// Tick asks the world to advance by dt without waiting. The resulting
// snapshot shows up on Snapshots unless the channel is full.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) error {
	if dt < 0 {
		return fmt.Errorf("%w: got %v", flock.ErrInvalidTimeStep, dt)
	}
	return actor.Tell(ctx, e.world, durationpb.New(dt))
}

// Step advances the world by dt seconds and waits for the new tick count.
func (e *Engine) Step(ctx context.Context, dt float64) (uint64, error) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: got %v", flock.ErrInvalidTimeStep, dt)
	}
	reply, err := e.ask(ctx, wrapperspb.Double(dt))
	if err != nil {
		return 0, err
	}
	return ticksReply(reply)
}

// Stats returns the statistics of the current flock.
func (e *Engine) Stats(ctx context.Context) (flock.Stats, error) {
	reply, err := e.ask(ctx, &emptypb.Empty{})
	if err != nil {
		return flock.Stats{}, err
	}
	s, ok := reply.(*structpb.Struct)
	if !ok {
		return flock.Stats{}, unexpectedReply(reply)
	}
	return statsFromStruct(s), nil
}

// Restart replaces the flock with a freshly built one.
func (e *Engine) Restart(ctx context.Context) error {
	reply, err := e.ask(ctx, wrapperspb.String(cmdRestart))
	if err != nil {
		return err
	}
	_, err = ticksReply(reply)
	return err
}

// Snapshots delivers the state after each Tick. Frames are dropped while the
// channel is full.
func (e *Engine) Snapshots() <-chan flock.Snapshot { return e.snapshots }

// Stop shuts the actor system down.
func (e *Engine) Stop(ctx context.Context) error {
	if err := e.system.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop actor system: %w", err)
	}
	return nil
}

func (e *Engine) ask(ctx context.Context, msg proto.Message) (proto.Message, error) {
	reply, err := actor.Ask(ctx, e.world, msg, e.askTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to reach the world: %w", err)
	}
	if failure, ok := reply.(*wrapperspb.StringValue); ok {
		return nil, fmt.Errorf("%w: %s", ErrWorld, failure.GetValue())
	}
	return reply, nil
}

func ticksReply(reply proto.Message) (uint64, error) {
	ticks, ok := reply.(*wrapperspb.UInt64Value)
	if !ok {
		return 0, unexpectedReply(reply)
	}
	return ticks.GetValue(), nil
}

func unexpectedReply(reply proto.Message) error {
	return fmt.Errorf("%w: unexpected reply %T", ErrWorld, reply)
}
