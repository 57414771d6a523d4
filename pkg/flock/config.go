package flock

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// Placement policies.
const (
	PlacementReference = "reference"
	PlacementSpaced    = "spaced"
)

// Neighbor index kinds.
const (
	IndexBruteForce = "bruteforce"
	IndexGrid       = "grid"
)

//go:embed config.schema.json
var configSchema string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
})

// Config describes a flock: its rules plus population and placement.
type Config struct {
	Rules `mapstructure:",squash"`

	Population int `json:"population" mapstructure:"population"`

	// Placement is "reference" (exact-equality reroll) or "spaced".
	Placement     string  `json:"placement" mapstructure:"placement"`
	MinSeparation float64 `json:"minSeparation" mapstructure:"minSeparation"`
	// Seed drives placement; 0 picks a random seed.
	Seed uint64 `json:"seed" mapstructure:"seed"`

	// Index is "bruteforce" or "grid".
	Index   string `json:"index" mapstructure:"index"`
	Workers int    `json:"workers" mapstructure:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Rules:         DefaultRules(),
		Population:    128,
		Placement:     PlacementReference,
		MinSeparation: 0.05,
		Index:         IndexBruteForce,
		Workers:       1,
	}
}

// Validate checks the configuration invariants and reports the first
// violation as a *ConfigurationError.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if c.Population < 1 {
		return configErrorf("population", "must be >= 1, got %d", c.Population)
	}
	switch c.Placement {
	case PlacementReference, PlacementSpaced:
	default:
		return configErrorf("placement", "unknown policy %q", c.Placement)
	}
	if c.MinSeparation < 0 {
		return configErrorf("minSeparation", "must be >= 0, got %v", c.MinSeparation)
	}
	switch c.Index {
	case IndexBruteForce, IndexGrid:
	default:
		return configErrorf("index", "unknown neighbor index %q", c.Index)
	}
	if c.Workers < 0 {
		return configErrorf("workers", "must be >= 0, got %d", c.Workers)
	}
	return nil
}

// ValidateSchema checks the configuration against the embedded JSON schema.
func (c *Config) ValidateSchema() error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return ValidateDocument(b)
}

// ValidateDocument checks a raw JSON document against the embedded schema.
func ValidateDocument(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoadConfig loads a JSON configuration file, validates it against the
// schema and overlays it on DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := ValidateDocument(b); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Placer returns the placer selected by the configuration.
func (c *Config) Placer() Placer {
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	if c.Placement == PlacementSpaced {
		return NewSpacedPlacer(seed, c.MinSeparation)
	}
	return NewReferencePlacer(seed)
}

// Build validates the configuration and creates the flock it describes.
// Extra options are applied after the ones derived from the configuration.
func (c *Config) Build(logger *zap.Logger, opts ...Option) (*Flock, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithLogger(logger), WithWorkers(c.Workers)}
	if c.Index == IndexGrid {
		base = append(base, WithNeighborIndex(NewGrid(c.senseRadius())))
	}
	return New(c.Rules, c.Population, c.Placer(), append(base, opts...)...)
}
