package viz

import (
	"math"
	"testing"

	"github.com/nkale/blockpi/internal/engine"
)

func TestInterpolateBeforeFirstEvent(t *testing.T) {
	init1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	init2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	events := []engine.Event{
		{Index: 1, Time: 1.0, Kind: engine.KindPair, X1: 2, V1: -1.5, X2: 2, V2: -0.5},
	}

	b1, b2, n := Interpolate(init1, init2, events, 0.5)

	if n != 0 {
		t.Errorf("expected 0 events consumed, got %d", n)
	}
	if b1.Pos != 2 {
		t.Errorf("block 1 should not have moved, got %v", b1.Pos)
	}
	if math.Abs(b2.Pos-2.5) > 1e-12 {
		t.Errorf("expected block 2 at 2.5, got %v", b2.Pos)
	}
}

func TestInterpolateAfterEvent(t *testing.T) {
	init1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	init2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	events := []engine.Event{
		{Index: 1, Time: 1.0, Kind: engine.KindPair, X1: 2, V1: -1.5, X2: 2, V2: -0.5},
	}

	b1, b2, n := Interpolate(init1, init2, events, 1.5)

	if n != 1 {
		t.Errorf("expected 1 event consumed, got %d", n)
	}
	if math.Abs(b1.Pos-(2-1.5*0.5)) > 1e-12 {
		t.Errorf("unexpected block 1 position: %v", b1.Pos)
	}
	if b1.Vel != -1.5 || b2.Vel != -0.5 {
		t.Errorf("velocities should come from the event, got %v %v", b1.Vel, b2.Vel)
	}
}

func TestColumnMappingStaysInBounds(t *testing.T) {
	init1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	init2 := engine.Block{Mass: 100, Pos: 3, Vel: -1, Length: 1}
	res := &engine.Result{
		Events:  []engine.Event{{Index: 1, Time: 1, Kind: engine.KindPair, X1: 2, X2: 2, V1: -1, V2: 0}},
		Elapsed: 1,
	}

	m := NewModel(init1, init2, engine.Wall{Pos: 0}, res, 30)

	for _, x := range []float64{0, 2, 3, 6, 100, -5} {
		col := m.column(x)
		if col < 0 && x >= m.minX {
			t.Errorf("column(%v) = %d, below range", x, col)
		}
	}
	if m.column(m.minX) != 0 {
		t.Errorf("wall should map to column 0, got %d", m.column(m.minX))
	}
	if m.column(m.maxX) != canvasWidth-1 {
		t.Errorf("right edge should map to last column, got %d", m.column(m.maxX))
	}
}

func TestViewRenders(t *testing.T) {
	init1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	init2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	res := &engine.Result{
		Events:  []engine.Event{{Index: 1, Time: 1, Kind: engine.KindPair, X1: 2, X2: 2, V1: -1, V2: 0}},
		Elapsed: 1,
	}

	m := NewModel(init1, init2, engine.Wall{Pos: 0}, res, 30)
	out := m.View()
	if out == "" {
		t.Fatal("expected non-empty view")
	}
}
