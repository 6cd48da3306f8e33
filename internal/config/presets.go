package config

// Presets name the scenarios worth reaching for without a config file. The
// pi family uses point blocks so the collision count depends on nothing but
// the mass ratio: pi<n> produces the first n+1 digits of pi.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"equal": {
		Scenario: "equal", Wall: 0,
		Block1:    BlockConfig{Mass: 1, Pos: 2, Vel: 0},
		Block2:    BlockConfig{Mass: 1, Pos: 3, Vel: -1},
		MaxEvents: DefaultMaxEvents, Tolerance: DefaultTolerance,
	},
	"pi1": {
		Scenario: "pi1", Wall: 0,
		Block1:    BlockConfig{Mass: 1, Pos: 2, Vel: 0},
		Block2:    BlockConfig{Mass: 100, Pos: 3, Vel: -1},
		MaxEvents: DefaultMaxEvents, Tolerance: DefaultTolerance,
	},
	"pi2": {
		Scenario: "pi2", Wall: 0,
		Block1:    BlockConfig{Mass: 1, Pos: 2, Vel: 0},
		Block2:    BlockConfig{Mass: 1e4, Pos: 3, Vel: -1},
		MaxEvents: DefaultMaxEvents, Tolerance: DefaultTolerance,
	},
	"pi3": {
		Scenario: "pi3", Wall: 0,
		Block1:    BlockConfig{Mass: 1, Pos: 2, Vel: 0},
		Block2:    BlockConfig{Mass: 1e6, Pos: 3, Vel: -1},
		MaxEvents: DefaultMaxEvents, Tolerance: DefaultTolerance,
	},
	"pi4": {
		Scenario: "pi4", Wall: 0,
		Block1:    BlockConfig{Mass: 1, Pos: 2, Vel: 0},
		Block2:    BlockConfig{Mass: 1e8, Pos: 3, Vel: -1},
		MaxEvents: DefaultMaxEvents, Tolerance: DefaultTolerance,
		Exact: true,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
