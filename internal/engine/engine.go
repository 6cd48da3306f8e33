package engine

import (
	"context"
	"math"
)

// Engine produces the ordered collision sequence for one two-block system.
// It is a finite lazy producer: each Scan advances the system to the next
// collision and resolves it. The zero value is not usable; construct with
// New so the ordering and positivity invariants hold before the first event.
type Engine struct {
	b1, b2 Block
	wall   Wall
	cfg    Config

	t      float64
	count  int
	ev     Event
	halted bool
	err    error

	metrics   []Metric
	observers []Observer
}

// New validates the configuration and returns a ready engine. Validation
// failures wrap ErrInvalidConfiguration; no event is ever produced from an
// invalid state.
func New(b1, b2 Block, wall Wall, cfg Config) (*Engine, error) {
	switch {
	case !(b1.Mass > 0):
		return nil, &ConfigError{Reason: "block 1 mass must be positive"}
	case !(b2.Mass > 0):
		return nil, &ConfigError{Reason: "block 2 mass must be positive"}
	case b1.Length < 0 || b2.Length < 0:
		return nil, &ConfigError{Reason: "block length must be non-negative"}
	case !isFinite(b1.Pos) || !isFinite(b2.Pos) || !isFinite(b1.Vel) || !isFinite(b2.Vel) || !isFinite(wall.Pos):
		return nil, &ConfigError{Reason: "positions and velocities must be finite"}
	case b1.Pos <= wall.Pos:
		return nil, &ConfigError{Reason: "block 1 must start strictly right of the wall"}
	case b2.Pos < b1.Right():
		return nil, &ConfigError{Reason: "block 2 must start right of block 1 (blocks overlap)"}
	case cfg.MaxEvents <= 0:
		return nil, &ConfigError{Reason: "max events must be positive"}
	case cfg.Tolerance < 0:
		return nil, &ConfigError{Reason: "tolerance must be non-negative"}
	}

	return &Engine{b1: b1, b2: b2, wall: wall, cfg: cfg}, nil
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// State returns the current blocks. Between Scans this is the post-event
// state of the last resolved collision.
func (e *Engine) State() (Block, Block) { return e.b1, e.b2 }

// Now returns elapsed simulated time.
func (e *Engine) Now() float64 { return e.t }

// Count returns the number of collisions resolved so far.
func (e *Engine) Count() int { return e.count }

// Halted reports whether the termination predicate has been reached.
func (e *Engine) Halted() bool { return e.halted }

// timeToWall returns the time until block 1 meets the wall. A candidate
// exists only while block 1 moves left.
func (e *Engine) timeToWall() (float64, bool) {
	if e.b1.Vel >= 0 {
		return 0, false
	}
	return e.clampDt((e.b1.Pos - e.wall.Pos) / -e.b1.Vel)
}

// timeToPair returns the time until block 1's right edge meets block 2.
// A candidate exists only while the gap is closing.
func (e *Engine) timeToPair() (float64, bool) {
	closing := e.b1.Vel - e.b2.Vel
	if closing <= 0 {
		return 0, false
	}
	return e.clampDt((e.b2.Pos - e.b1.Right()) / closing)
}

// clampDt rejects non-finite candidates and pulls rounding-negative ones
// back to zero. A dt that is negative beyond tolerance means the bodies
// already interpenetrate; that is caught by the geometry check instead of
// being treated as a candidate.
func (e *Engine) clampDt(dt float64) (float64, bool) {
	if !isFinite(dt) {
		return 0, false
	}
	if dt < 0 {
		if dt >= -e.cfg.Tolerance {
			return 0, true
		}
		return 0, false
	}
	return dt, true
}

// Scan advances the system to the next collision and resolves it, returning
// false when the run is over. After a false return, Err distinguishes normal
// termination (nil) from failure.
func (e *Engine) Scan() bool {
	if e.halted || e.err != nil {
		return false
	}
	if e.count >= e.cfg.MaxEvents {
		e.err = &EventError{Index: e.count, Time: e.t, Block1: e.b1, Block2: e.b2, Wrapped: ErrUnbounded}
		return false
	}

	dtPair, pairOK := e.timeToPair()
	dtWall, wallOK := e.timeToWall()

	// Termination predicate: neither candidate exists, i.e. block 1 is not
	// moving toward the wall and the blocks are not closing.
	if !pairOK && !wallOK {
		e.halted = true
		return false
	}

	// On simultaneous contact the wall resolves first. Fixed policy so
	// identical inputs always replay the identical sequence.
	var kind Kind
	var dt float64
	if wallOK && (!pairOK || dtWall <= dtPair) {
		kind, dt = KindWall, dtWall
	} else {
		kind, dt = KindPair, dtPair
	}

	e.b1.Pos += e.b1.Vel * dt
	e.b2.Pos += e.b2.Vel * dt
	e.t += dt

	switch kind {
	case KindWall:
		e.b1.Vel = -e.b1.Vel
	case KindPair:
		m1, m2 := e.b1.Mass, e.b2.Mass
		v1, v2 := e.b1.Vel, e.b2.Vel
		sum := m1 + m2
		e.b1.Vel = ((m1-m2)*v1 + 2*m2*v2) / sum
		e.b2.Vel = ((m2-m1)*v2 + 2*m1*v1) / sum
	}

	e.count++
	e.ev = Event{
		Index: e.count,
		Time:  e.t,
		Kind:  kind,
		X1:    e.b1.Pos,
		V1:    e.b1.Vel,
		X2:    e.b2.Pos,
		V2:    e.b2.Vel,
	}

	if err := e.checkGeometry(); err != nil {
		e.err = err
		return false
	}

	for _, m := range e.metrics {
		m.Observe(e.ev)
	}
	for _, o := range e.observers {
		o.OnEvent(e.ev)
	}

	return true
}

// Event returns the collision resolved by the last successful Scan.
func (e *Engine) Event() Event { return e.ev }

// Err returns the error that stopped the run, or nil after a normal halt.
func (e *Engine) Err() error { return e.err }

func (e *Engine) checkGeometry() error {
	tol := e.cfg.Tolerance
	if e.b1.Pos < e.wall.Pos-tol || e.b1.Right() > e.b2.Pos+tol {
		return &EventError{Index: e.count, Time: e.t, Block1: e.b1, Block2: e.b2, Wrapped: ErrDegenerateState}
	}
	return nil
}

// Run drives Scan to completion and collects the full sequence. On failure
// the partial Result is returned alongside the error so the event history
// stays available for diagnostics.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	for _, m := range e.metrics {
		m.Reset()
	}

	res := &Result{
		Metrics:          make(map[string]float64),
		SmallestInterval: math.Inf(1),
		Wall:             e.wall,
	}

	prev := 0.0
	for e.Scan() {
		select {
		case <-ctx.Done():
			e.finish(res)
			return res, ctx.Err()
		default:
		}

		ev := e.Event()
		res.Events = append(res.Events, ev)
		if d := ev.Time - prev; d < res.SmallestInterval {
			res.SmallestInterval = d
		}
		prev = ev.Time
	}

	e.finish(res)
	if err := e.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) finish(res *Result) {
	res.Collisions = e.count
	res.Block1 = e.b1
	res.Block2 = e.b2
	res.Elapsed = e.t
	if len(res.Events) == 0 {
		res.SmallestInterval = 0
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}
