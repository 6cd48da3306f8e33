// Package metrics provides conserved-quantity checks that accumulate over a
// collision event sequence.
package metrics

import (
	"math"

	"github.com/nkale/blockpi/internal/engine"
)

// KineticEnergyDrift tracks the worst relative deviation of total kinetic
// energy from its initial value. For a correct run this is rounding noise.
type KineticEnergyDrift struct {
	m1, m2   float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewKineticEnergyDrift(b1, b2 engine.Block) *KineticEnergyDrift {
	return &KineticEnergyDrift{
		m1:      b1.Mass,
		m2:      b2.Mass,
		initial: b1.KineticEnergy() + b2.KineticEnergy(),
	}
}

func (k *KineticEnergyDrift) Name() string { return "energy_drift" }

func (k *KineticEnergyDrift) Observe(ev engine.Event) {
	e := 0.5*k.m1*ev.V1*ev.V1 + 0.5*k.m2*ev.V2*ev.V2
	k.samples++
	if k.initial != 0 {
		drift := math.Abs(e-k.initial) / math.Abs(k.initial)
		k.maxDrift = math.Max(k.maxDrift, drift)
	}
}

func (k *KineticEnergyDrift) Value() float64 { return k.maxDrift }

func (k *KineticEnergyDrift) Reset() {
	k.maxDrift = 0
	k.samples = 0
}

// MomentumDrift tracks the worst absolute momentum change across pair
// events. Wall events are skipped: the wall exchanges momentum with the
// blocks by construction.
type MomentumDrift struct {
	m1, m2   float64
	prev1    float64
	prev2    float64
	init1    float64
	init2    float64
	maxDrift float64
}

func NewMomentumDrift(b1, b2 engine.Block) *MomentumDrift {
	return &MomentumDrift{
		m1: b1.Mass, m2: b2.Mass,
		prev1: b1.Vel, prev2: b2.Vel,
		init1: b1.Vel, init2: b2.Vel,
	}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(ev engine.Event) {
	if ev.Kind == engine.KindPair {
		before := m.m1*m.prev1 + m.m2*m.prev2
		after := m.m1*ev.V1 + m.m2*ev.V2
		m.maxDrift = math.Max(m.maxDrift, math.Abs(after-before))
	}
	m.prev1, m.prev2 = ev.V1, ev.V2
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.prev1, m.prev2 = m.init1, m.init2
	m.maxDrift = 0
}

// MinInterval records the shortest time between consecutive events. On the
// pi scenarios this shrinks rapidly with the mass ratio and is the first
// quantity to fall below float64 resolution.
type MinInterval struct {
	prev     float64
	smallest float64
	samples  int
}

func NewMinInterval() *MinInterval {
	return &MinInterval{smallest: math.Inf(1)}
}

func (m *MinInterval) Name() string { return "min_interval" }

func (m *MinInterval) Observe(ev engine.Event) {
	if d := ev.Time - m.prev; d < m.smallest {
		m.smallest = d
	}
	m.prev = ev.Time
	m.samples++
}

func (m *MinInterval) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.smallest
}

func (m *MinInterval) Reset() {
	m.prev = 0
	m.smallest = math.Inf(1)
	m.samples = 0
}
