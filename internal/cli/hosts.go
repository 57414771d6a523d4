package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/render/terminal"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/render/window"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stopTimeout = 5 * time.Second

func newWindowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Show the flock in a window (ESC quits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), a, func(ctx context.Context, engine *simulation.Engine) error {
				return window.Run(ctx, engine, a.cfg.Window, a.cfg.Flock.Rules, a.logger)
			})
		},
	}
}

func newTerminalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "terminal",
		Short: "Show the flock as arrows in the terminal (ESC or q quits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create terminal screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize terminal screen: %w", err)
			}
			defer screen.Fini()

			return withEngine(cmd.Context(), a, func(ctx context.Context, engine *simulation.Engine) error {
				return terminal.New(screen, engine, a.cfg.Terminal, a.logger).Run(ctx)
			})
		},
	}
}

// withEngine runs fn against an actor-hosted flock and stops the actor
// system afterwards, even when ctx is already cancelled.
func withEngine(ctx context.Context, a *app, fn func(context.Context, *simulation.Engine) error) error {
	engine, err := simulation.NewEngine(ctx, &a.cfg.Flock, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		if err := engine.Stop(stopCtx); err != nil {
			a.logger.Warn("engine did not stop cleanly", zap.Error(err))
		}
	}()
	return fn(ctx, engine)
}
