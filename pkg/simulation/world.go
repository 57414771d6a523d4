package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// cmdRestart asks the world to rebuild its flock from scratch.
const cmdRestart = "restart"

// BuildFunc creates a fresh flock; the world calls it at start and on restart.
type BuildFunc func() (*flock.Flock, error)

// WorldActor owns the flock. Its mailbox serialises every access, so the flock
// itself never sees two goroutines.
//
// Messages:
//   - *durationpb.Duration (Tell): advance by dt, then push a snapshot.
//   - *wrapperspb.DoubleValue (Ask): advance by dt seconds, reply with the tick count.
//   - *emptypb.Empty (Ask): reply with the flock statistics as a structpb.Struct.
//   - *wrapperspb.StringValue "restart" (Ask): rebuild the flock.
//
// Failed asks are answered with a *wrapperspb.StringValue holding the error text.
type WorldActor struct {
	build      BuildFunc
	flock      *flock.Flock
	snapshotCh chan<- flock.Snapshot
	logger     *zap.Logger

	// --- Benchmark Stats ---
	tickCount   int
	skipped     int
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit.
func NewWorldActor(build BuildFunc, snapshotCh chan<- flock.Snapshot, logger *zap.Logger) *WorldActor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorldActor{
		build:       build,
		snapshotCh:  snapshotCh,
		logger:      logger.Named("world"),
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(*actor.Context) error {
	f, err := w.build()
	if err != nil {
		return err
	}
	w.flock = f
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		w.logger.Info("world started", zap.Int("population", w.flock.Len()))

	// The main simulation step, driven by the render loop.
	case *durationpb.Duration:
		w.logBenchmarks()
		if err := w.flock.Tick(msg.AsDuration().Seconds()); err != nil {
			w.logger.Warn("tick rejected", zap.Error(err))
			return
		}
		w.tickCount++
		w.pushSnapshot()

	case *wrapperspb.DoubleValue:
		if err := w.flock.Tick(msg.GetValue()); err != nil {
			ctx.Response(errorReply(err))
			return
		}
		w.tickCount++
		ctx.Response(wrapperspb.UInt64(w.flock.Ticks()))

	case *emptypb.Empty:
		st, err := statsReply(w.flock.Stats())
		if err != nil {
			ctx.Response(errorReply(err))
			return
		}
		ctx.Response(st)

	case *wrapperspb.StringValue:
		if msg.GetValue() != cmdRestart {
			ctx.Unhandled()
			return
		}
		f, err := w.build()
		if err != nil {
			w.logger.Error("restart failed, keeping the current flock", zap.Error(err))
			ctx.Response(errorReply(err))
			return
		}
		w.flock = f
		w.logger.Info("flock restarted", zap.Int("population", f.Len()))
		w.pushSnapshot()
		ctx.Response(wrapperspb.UInt64(f.Ticks()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(*actor.Context) error {
	w.logger.Info("world is shutdown", zap.Uint64("ticks", w.ticks()))
	return nil
}

func (w *WorldActor) ticks() uint64 {
	if w.flock == nil {
		return 0
	}
	return w.flock.Ticks()
}

func (w *WorldActor) logBenchmarks() {
	if time.Since(w.lastLogTime) >= time.Second {
		w.logger.Debug("tick rate",
			zap.Int("ticksPerSec", w.tickCount),
			zap.Int("skippedFrames", w.skipped),
			zap.Int("population", w.flock.Len()),
		)
		w.tickCount = 0
		w.skipped = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	select {
	case w.snapshotCh <- w.flock.Snapshot():
	default:
		// consumer busy, skip frame
		w.skipped++
	}
}

func errorReply(err error) *wrapperspb.StringValue {
	return wrapperspb.String(err.Error())
}

func statsReply(st flock.Stats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"tick":         float64(st.Tick),
		"population":   float64(st.Population),
		"meanSpeed":    st.MeanSpeed,
		"topSpeed":     st.TopSpeed,
		"polarization": st.Polarization,
		"centroidX":    st.Centroid.X,
		"centroidY":    st.Centroid.Y,
	})
}

func statsFromStruct(s *structpb.Struct) flock.Stats {
	f := s.GetFields()
	num := func(key string) float64 { return f[key].GetNumberValue() }
	st := flock.Stats{
		Tick:         uint64(num("tick")),
		Population:   int(num("population")),
		MeanSpeed:    num("meanSpeed"),
		TopSpeed:     num("topSpeed"),
		Polarization: num("polarization"),
	}
	st.Centroid.X = num("centroidX")
	st.Centroid.Y = num("centroidY")
	return st
}
