// Package cli wires configuration, logging and the simulation hosts into the
// boids command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	runID   string
}

// NewRootCmd builds a fresh command tree, so tests can run it in isolation.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "boids",
		Short:         "Boids flocking simulation with window, terminal and headless hosts.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./boids.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Int("population", 0, "number of agents")
	pf.Uint64("seed", 0, "placement seed, 0 picks a random one")

	rootCmd.AddCommand(
		newRunCmd(a),
		newTerminalCmd(a),
		newWindowCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// initialize loads the configuration in precedence order defaults < file <
// env < flags, then sets up logging.
func (a *app) initialize(cmd *cobra.Command) error {
	v := config.New()
	if err := config.ReadInConfig(v, a.cfgFile); err != nil {
		return err
	}
	if err := bindFlags(v, cmd, map[string]string{
		"logger.level":     "log-level",
		"flock.population": "population",
		"flock.seed":       "seed",
		"run.ticks":        "ticks",
		"run.dt":           "dt",
		"run.every":        "every",
	}); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "boids"})
		return fmt.Errorf("invalid configuration: %w", err)
	}
	observability.InitializeLogger(cfg.Logger)

	a.cfg = cfg
	a.runID = uuid.New().String()
	a.logger = observability.GetLogger().With(zap.String("run_id", a.runID))
	a.logger.Debug("configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.Int("population", cfg.Flock.Population),
		zap.Uint64("seed", cfg.Flock.Seed))
	return nil
}

// bindFlags binds each flag that the running command knows about to its
// viper key. Unchanged flags never override the file or the environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Execute runs the command tree until it returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}
