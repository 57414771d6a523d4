package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/flock"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOIDS_FLOCK_POPULATION.
const EnvPrefix = "BOIDS"

// Config holds the whole application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Flock    flock.Config   `mapstructure:"flock" yaml:"flock"`
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`
	Terminal TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	Run      RunConfig      `mapstructure:"run" yaml:"run"`
}

// LoggerConfig defines all the settings for the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// WindowConfig drives the graphical host.
type WindowConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	// TimeScale multiplies the measured frame time before it reaches the flock.
	TimeScale  float64 `mapstructure:"time_scale" yaml:"time_scale"`
	ShowRadius bool    `mapstructure:"show_radius" yaml:"show_radius"`
}

// TerminalConfig drives the character-grid host.
type TerminalConfig struct {
	FPS       float64 `mapstructure:"fps" yaml:"fps"`
	TimeScale float64 `mapstructure:"time_scale" yaml:"time_scale"`
}

// RunConfig drives the headless runner.
type RunConfig struct {
	Ticks int     `mapstructure:"ticks" yaml:"ticks"`
	DT    float64 `mapstructure:"dt" yaml:"dt"`
	// Every logs progress each Every ticks; 0 disables progress logs.
	Every int `mapstructure:"every" yaml:"every"`
}

// SetDefaults registers every known key, which also makes each of them
// reachable through an environment variable.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "boids")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Flock --
	d := flock.DefaultConfig()
	v.SetDefault("flock.population", d.Population)
	v.SetDefault("flock.separationRadius", d.SeparationRadius)
	v.SetDefault("flock.cohesionRadius", d.CohesionRadius)
	v.SetDefault("flock.separationWeight", d.SeparationWeight)
	v.SetDefault("flock.alignmentWeight", d.AlignmentWeight)
	v.SetDefault("flock.cohesionWeight", d.CohesionWeight)
	v.SetDefault("flock.maxSpeed", d.MaxSpeed)
	v.SetDefault("flock.placement", d.Placement)
	v.SetDefault("flock.minSeparation", d.MinSeparation)
	v.SetDefault("flock.seed", d.Seed)
	v.SetDefault("flock.index", d.Index)
	v.SetDefault("flock.workers", d.Workers)

	// -- Window --
	v.SetDefault("window.width", 800)
	v.SetDefault("window.height", 600)
	v.SetDefault("window.title", "Boids")
	v.SetDefault("window.time_scale", 1.0)
	v.SetDefault("window.show_radius", false)

	// -- Terminal --
	v.SetDefault("terminal.fps", 30.0)
	v.SetDefault("terminal.time_scale", 1.0)

	// -- Run --
	v.SetDefault("run.ticks", 600)
	v.SetDefault("run.dt", 1.0/60)
	v.SetDefault("run.every", 0)
}

// New returns a viper instance with defaults and BOIDS_* environment
// overrides wired in.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadInConfig reads cfgFile, or ./boids.{yaml,json,toml} when cfgFile is
// empty. A missing default file is not an error.
func ReadInConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("boids")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates the flock section against
// its invariants and the flock JSON schema.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Logger.LogFile != "" {
		path, err := homedir.Expand(cfg.Logger.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand log file path: %w", err)
		}
		cfg.Logger.LogFile = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the host sections and the flock section.
func (c *Config) Validate() error {
	if err := c.Flock.Validate(); err != nil {
		return err
	}
	if err := c.Flock.ValidateSchema(); err != nil {
		return err
	}
	if c.Run.Ticks < 0 {
		return fmt.Errorf("run.ticks must be >= 0, got %d", c.Run.Ticks)
	}
	if c.Run.DT < 0 {
		return fmt.Errorf("run.dt must be >= 0, got %v", c.Run.DT)
	}
	if c.Terminal.FPS <= 0 {
		return fmt.Errorf("terminal.fps must be > 0, got %v", c.Terminal.FPS)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TimeScale < 0 || c.Terminal.TimeScale < 0 {
		return errors.New("time scales must be >= 0")
	}
	return nil
}
