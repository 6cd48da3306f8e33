package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nkale/blockpi/internal/engine"
)

// Defaults follow the canonical scenario: unit-length boxes on a rail with
// the wall at the origin and the heavy box incoming at 1 m/s.
const (
	DefaultWall      = 0.0
	DefaultMass1     = 1.0
	DefaultPos1      = 3.0
	DefaultVel1      = 0.0
	DefaultMass2     = 100.0
	DefaultPos2      = 8.0
	DefaultVel2      = -1.0
	DefaultLength    = 1.0
	DefaultMaxEvents = 50_000_000
	DefaultTolerance = 1e-9
)

type Config struct {
	Scenario  string      `yaml:"scenario"`
	Wall      float64     `yaml:"wall"`
	Block1    BlockConfig `yaml:"block1"`
	Block2    BlockConfig `yaml:"block2"`
	MaxEvents int         `yaml:"max_events"`
	Tolerance float64     `yaml:"tolerance"`
	// Exact switches the run to arbitrary-precision arithmetic. Slower,
	// but immune to float64 drift on deep collision chains.
	Exact bool `yaml:"exact"`
}

type BlockConfig struct {
	Mass   float64 `yaml:"mass"`
	Pos    float64 `yaml:"pos"`
	Vel    float64 `yaml:"vel"`
	Length float64 `yaml:"length"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:  "default",
		Wall:      DefaultWall,
		Block1:    BlockConfig{Mass: DefaultMass1, Pos: DefaultPos1, Vel: DefaultVel1, Length: DefaultLength},
		Block2:    BlockConfig{Mass: DefaultMass2, Pos: DefaultPos2, Vel: DefaultVel2, Length: DefaultLength},
		MaxEvents: DefaultMaxEvents,
		Tolerance: DefaultTolerance,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Bodies maps the configuration onto engine state. Validation happens in
// engine.New, not here.
func (c *Config) Bodies() (engine.Block, engine.Block, engine.Wall) {
	b1 := engine.Block{Mass: c.Block1.Mass, Pos: c.Block1.Pos, Vel: c.Block1.Vel, Length: c.Block1.Length}
	b2 := engine.Block{Mass: c.Block2.Mass, Pos: c.Block2.Pos, Vel: c.Block2.Vel, Length: c.Block2.Length}
	return b1, b2, engine.Wall{Pos: c.Wall}
}

func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		MaxEvents: c.MaxEvents,
		Tolerance: c.Tolerance,
	}
}
