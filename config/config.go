// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Ground     GroundConfig     `yaml:"ground"`
	Ragdoll    RagdollConfig    `yaml:"ragdoll"`
	Generation GenerationConfig `yaml:"generation"`
	Neural     NeuralConfig     `yaml:"neural"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ArenaConfig holds the dimensions of the simulated area.
// The arena center is the point ragdolls are scored against.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds rigid body engine parameters.
type PhysicsConfig struct {
	TickRate   int     `yaml:"tick_rate"`  // Fixed steps per simulated second
	GravityX   float64 `yaml:"gravity_x"`
	GravityY   float64 `yaml:"gravity_y"`  // y points up, so gravity is negative
	Iterations int     `yaml:"iterations"` // Constraint solver iterations per step
}

// GroundConfig holds the static ground box parameters.
type GroundConfig struct {
	Height     float64 `yaml:"height"`
	Lift       float64 `yaml:"lift"` // Top surface sits this far above y=0
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

// MaterialConfig holds surface properties for a collision shape.
type MaterialConfig struct {
	Elasticity float64 `yaml:"elasticity"`
	Friction   float64 `yaml:"friction"`
	Density    float64 `yaml:"density"`
}

// RagdollConfig holds skeleton construction parameters.
type RagdollConfig struct {
	Group        uint           `yaml:"group"` // Collision group shared by every joint in a run
	JointRadius  float64        `yaml:"joint_radius"`
	Material     MaterialConfig `yaml:"material"`
	Strength     float64        `yaml:"strength"`       // Bone actuation force cap
	SpawnOffsetY float64        `yaml:"spawn_offset_y"` // Hip spawn height relative to arena center
}

// GenerationConfig holds evaluation run parameters.
type GenerationConfig struct {
	Ticks      int `yaml:"ticks"`      // Ticks per generation (0 = tick_rate * 5)
	Population int `yaml:"population"` // Ragdolls per generation when controllers are generated
}

// NeuralConfig holds feedforward controller parameters.
type NeuralConfig struct {
	Hidden      int     `yaml:"hidden"`
	InputScale  float64 `yaml:"input_scale"`  // Multiplier applied to sensor offsets
	WeightSigma float64 `yaml:"weight_sigma"` // Scale of random initial weights
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	SampleEvery int `yaml:"sample_every"` // Ticks between CSV samples
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
	HallOfFame  int `yaml:"hall_of_fame"` // Best ragdolls kept per run
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT      float64 // 1 / Physics.TickRate
	CenterX float64 // Arena.Width / 2
	CenterY float64 // Arena.Height / 2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the physics engine cannot run with.
func (c *Config) validate() error {
	if c.Physics.TickRate <= 0 {
		return fmt.Errorf("physics.tick_rate must be positive, got %d", c.Physics.TickRate)
	}
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("arena must have positive size, got %vx%v", c.Arena.Width, c.Arena.Height)
	}
	if c.Ragdoll.JointRadius <= 0 {
		return fmt.Errorf("ragdoll.joint_radius must be positive, got %v", c.Ragdoll.JointRadius)
	}
	if c.Ragdoll.Group == 0 {
		return fmt.Errorf("ragdoll.group must be non-zero, got %d", c.Ragdoll.Group)
	}
	if c.Ragdoll.Strength < 0 {
		return fmt.Errorf("ragdoll.strength must not be negative, got %v", c.Ragdoll.Strength)
	}
	if c.Neural.Hidden <= 0 {
		return fmt.Errorf("neural.hidden must be positive, got %d", c.Neural.Hidden)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.Physics.TickRate)
	c.Derived.CenterX = c.Arena.Width / 2
	c.Derived.CenterY = c.Arena.Height / 2

	// Generation length defaults to five simulated seconds
	if c.Generation.Ticks <= 0 {
		c.Generation.Ticks = c.Physics.TickRate * 5
	}
	if c.Physics.Iterations <= 0 {
		c.Physics.Iterations = 10
	}
	if c.Telemetry.SampleEvery <= 0 {
		c.Telemetry.SampleEvery = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
