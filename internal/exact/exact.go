// Package exact runs the collision event loop on arbitrary-precision
// rationals. Every position, velocity and event time is a *big.Rat, so the
// event sequence is exact for any mass ratio: deep chains (100^n for n > 6)
// that drift under float64 stay correct here, at roughly two orders of
// magnitude in throughput.
//
// Configurations are validated by the same rules as the float64 engine and
// the produced [engine.Event] records use its types, so downstream consumers
// (storage, plots, the live view) cannot tell the two apart.
package exact

import (
	"context"
	"math"
	"math/big"

	"github.com/nkale/blockpi/internal/engine"
)

var two = big.NewRat(2, 1)

// System is the rational mirror of engine.Engine. Construct with New; the
// zero value is not usable.
type System struct {
	m1, m2 *big.Rat
	x1, v1 *big.Rat
	x2, v2 *big.Rat
	l1, l2 *big.Rat
	wall   *big.Rat

	t         *big.Rat
	count     int
	maxEvents int
	ev        engine.Event
	halted    bool
	err       error

	// scratch values reused across steps to keep allocation off the
	// per-event path
	closing, dt *big.Rat
}

// New validates the configuration with the float64 engine's rules and lifts
// it into rational state.
func New(b1, b2 engine.Block, wall engine.Wall, maxEvents int) (*System, error) {
	// Shared validation; the throwaway engine is never scanned.
	if _, err := engine.New(b1, b2, wall, engine.Config{MaxEvents: maxEvents, Tolerance: 0}); err != nil {
		return nil, err
	}

	return &System{
		m1:        new(big.Rat).SetFloat64(b1.Mass),
		m2:        new(big.Rat).SetFloat64(b2.Mass),
		x1:        new(big.Rat).SetFloat64(b1.Pos),
		v1:        new(big.Rat).SetFloat64(b1.Vel),
		x2:        new(big.Rat).SetFloat64(b2.Pos),
		v2:        new(big.Rat).SetFloat64(b2.Vel),
		l1:        new(big.Rat).SetFloat64(b1.Length),
		l2:        new(big.Rat).SetFloat64(b2.Length),
		wall:      new(big.Rat).SetFloat64(wall.Pos),
		t:         new(big.Rat),
		maxEvents: maxEvents,
		closing:   new(big.Rat),
		dt:        new(big.Rat),
	}, nil
}

// Count returns the number of collisions resolved so far.
func (s *System) Count() int { return s.count }

// Halted reports whether the termination predicate has been reached.
func (s *System) Halted() bool { return s.halted }

// Err returns the error that stopped the run, or nil after a normal halt.
func (s *System) Err() error { return s.err }

// Event returns the collision resolved by the last successful Scan,
// approximated to float64 for the record.
func (s *System) Event() engine.Event { return s.ev }

// Scan advances to the next collision and resolves it. Unlike the float64
// engine there is no tolerance anywhere: candidate existence and the
// wall-first tie-break are decided by exact comparison.
func (s *System) Scan() bool {
	if s.halted || s.err != nil {
		return false
	}
	if s.count >= s.maxEvents {
		b1, b2 := s.Blocks()
		s.err = &engine.EventError{Index: s.count, Time: rf(s.t), Block1: b1, Block2: b2, Wrapped: engine.ErrUnbounded}
		return false
	}

	wallOK := s.v1.Sign() < 0
	s.closing.Sub(s.v1, s.v2)
	pairOK := s.closing.Sign() > 0

	if !wallOK && !pairOK {
		s.halted = true
		return false
	}

	var dtWall, dtPair *big.Rat
	if wallOK {
		dtWall = new(big.Rat).Sub(s.x1, s.wall)
		dtWall.Quo(dtWall, new(big.Rat).Neg(s.v1))
	}
	if pairOK {
		dtPair = new(big.Rat).Sub(s.x2, s.x1)
		dtPair.Sub(dtPair, s.l1)
		dtPair.Quo(dtPair, s.closing)
	}

	kind := engine.KindPair
	dt := dtPair
	if wallOK && (!pairOK || dtWall.Cmp(dtPair) <= 0) {
		kind, dt = engine.KindWall, dtWall
	}

	s.x1.Add(s.x1, s.dt.Mul(s.v1, dt))
	s.x2.Add(s.x2, s.dt.Mul(s.v2, dt))
	s.t.Add(s.t, dt)

	switch kind {
	case engine.KindWall:
		s.v1.Neg(s.v1)
	case engine.KindPair:
		sum := new(big.Rat).Add(s.m1, s.m2)
		diff := new(big.Rat).Sub(s.m1, s.m2)

		v1 := new(big.Rat).Mul(diff, s.v1)
		v1.Add(v1, new(big.Rat).Mul(new(big.Rat).Mul(two, s.m2), s.v2))
		v1.Quo(v1, sum)

		v2 := new(big.Rat).Mul(diff.Neg(diff), s.v2)
		v2.Add(v2, new(big.Rat).Mul(new(big.Rat).Mul(two, s.m1), s.v1))
		v2.Quo(v2, sum)

		s.v1.Set(v1)
		s.v2.Set(v2)
	}

	s.count++
	s.ev = engine.Event{
		Index: s.count,
		Time:  rf(s.t),
		Kind:  kind,
		X1:    rf(s.x1),
		V1:    rf(s.v1),
		X2:    rf(s.x2),
		V2:    rf(s.v2),
	}
	return true
}

// Blocks returns the current block states approximated to float64.
func (s *System) Blocks() (engine.Block, engine.Block) {
	b1 := engine.Block{Mass: rf(s.m1), Pos: rf(s.x1), Vel: rf(s.v1), Length: rf(s.l1)}
	b2 := engine.Block{Mass: rf(s.m2), Pos: rf(s.x2), Vel: rf(s.v2), Length: rf(s.l2)}
	return b1, b2
}

// Run drives Scan to completion and collects the full sequence, mirroring
// engine.Engine.Run.
func (s *System) Run(ctx context.Context) (*engine.Result, error) {
	res := &engine.Result{
		Metrics:          make(map[string]float64),
		SmallestInterval: math.Inf(1),
		Wall:             engine.Wall{Pos: rf(s.wall)},
	}

	prev := 0.0
	for s.Scan() {
		select {
		case <-ctx.Done():
			s.finish(res)
			return res, ctx.Err()
		default:
		}

		ev := s.Event()
		res.Events = append(res.Events, ev)
		if d := ev.Time - prev; d < res.SmallestInterval {
			res.SmallestInterval = d
		}
		prev = ev.Time
	}

	s.finish(res)
	if err := s.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// RunCount resolves events without recording them and returns the total
// collision count. This is the fast path for deep chains where the caller
// only wants the digits.
func (s *System) RunCount(ctx context.Context) (int, error) {
	const checkEvery = 1 << 12
	for s.Scan() {
		if s.count%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return s.count, ctx.Err()
			default:
			}
		}
	}
	return s.count, s.Err()
}

func (s *System) finish(res *engine.Result) {
	res.Collisions = s.count
	res.Block1, res.Block2 = s.Blocks()
	res.Elapsed = rf(s.t)
	if len(res.Events) == 0 {
		res.SmallestInterval = 0
	}
}

func rf(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
