package engine

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind identifies which pair of bodies collided.
type Kind int

const (
	// KindPair is a collision between the two movable blocks.
	KindPair Kind = iota
	// KindWall is a collision between block 1 and the wall.
	KindWall
)

func (k Kind) String() string {
	switch k {
	case KindPair:
		return "pair"
	case KindWall:
		return "wall"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pair":
		return KindPair, nil
	case "wall":
		return KindWall, nil
	default:
		return 0, fmt.Errorf("engine: unknown event kind %q", s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Block is a movable body. Pos is the left edge; a block occupies
// [Pos, Pos+Length]. Length zero models a point mass.
type Block struct {
	Mass   float64
	Pos    float64
	Vel    float64
	Length float64
}

// Right returns the position of the block's right edge.
func (b Block) Right() float64 { return b.Pos + b.Length }

// Momentum returns m*v.
func (b Block) Momentum() float64 { return b.Mass * b.Vel }

// KineticEnergy returns (1/2)*m*v^2.
func (b Block) KineticEnergy() float64 { return 0.5 * b.Mass * b.Vel * b.Vel }

// Wall is the immovable left boundary. Its mass is treated as infinite:
// a block striking it has its velocity negated exactly.
type Wall struct {
	Pos float64
}

// Event records one resolved collision. Positions and velocities are the
// post-resolution values. Events are append-only and never mutated.
type Event struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Kind  Kind    `json:"kind"`
	X1    float64 `json:"x1"`
	V1    float64 `json:"v1"`
	X2    float64 `json:"x2"`
	V2    float64 `json:"v2"`
}

// Config holds the per-run knobs. It is passed by value into New so that
// independent runs cannot share ambient state.
type Config struct {
	// MaxEvents aborts the run with ErrUnbounded once exceeded. The pi
	// scenarios produce about pi*10^n events at mass ratio 100^n.
	MaxEvents int
	// Tolerance bounds both the clamp applied to rounding-negative event
	// times and the interpenetration allowed before the state is declared
	// degenerate.
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{
		MaxEvents: 50_000_000,
		Tolerance: 1e-9,
	}
}

// Result is the artifact of a completed (or aborted) run. On error the
// fields hold everything produced up to the failure.
type Result struct {
	Events           []Event
	Collisions       int
	Block1           Block
	Block2           Block
	Wall             Wall
	Elapsed          float64
	SmallestInterval float64
	Metrics          map[string]float64
}

// Metric accumulates a scalar over the event sequence.
type Metric interface {
	Name() string
	Observe(ev Event)
	Value() float64
	Reset()
}

// Observer receives every resolved event as it is produced.
type Observer interface {
	OnEvent(ev Event)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
