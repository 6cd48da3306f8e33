package exact

import (
	"context"
	"errors"
	"testing"

	"github.com/nkale/blockpi/internal/engine"
)

func piSystem(t *testing.T, massRatio float64, maxEvents int) *System {
	t.Helper()
	b1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	b2 := engine.Block{Mass: massRatio, Pos: 3, Vel: -1}
	s, err := New(b1, b2, engine.Wall{Pos: 0}, maxEvents)
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	return s
}

func TestExactPiCounts(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{1, 3},
		{100, 31},
		{10000, 314},
		{1000000, 3141},
	}

	for _, tt := range tests {
		s := piSystem(t, tt.ratio, 10000)
		n, err := s.RunCount(context.Background())
		if err != nil {
			t.Fatalf("ratio %v: %v", tt.ratio, err)
		}
		if n != tt.want {
			t.Errorf("ratio %v: expected %d collisions, got %d", tt.ratio, tt.want, n)
		}
	}
}

func TestExactMatchesEngineSequence(t *testing.T) {
	b1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	b2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	wall := engine.Wall{Pos: 0}

	e, err := engine.New(b1, b2, wall, engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	fres, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(b1, b2, wall, 10000)
	if err != nil {
		t.Fatal(err)
	}
	xres, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if xres.Collisions != fres.Collisions {
		t.Fatalf("collision counts differ: exact %d, float %d", xres.Collisions, fres.Collisions)
	}
	for i := range xres.Events {
		if xres.Events[i].Kind != fres.Events[i].Kind {
			t.Fatalf("event %d kind differs: exact %v, float %v", i, xres.Events[i].Kind, fres.Events[i].Kind)
		}
	}
}

func TestExactValidation(t *testing.T) {
	b1 := engine.Block{Mass: -1, Pos: 2}
	b2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	_, err := New(b1, b2, engine.Wall{Pos: 0}, 1000)
	if !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestExactUnbounded(t *testing.T) {
	s := piSystem(t, 10000, 5)
	n, err := s.RunCount(context.Background())
	if !errors.Is(err, engine.ErrUnbounded) {
		t.Fatalf("expected ErrUnbounded, got %v", err)
	}
	if n != 5 {
		t.Errorf("expected count 5 at abort, got %d", n)
	}
}

func TestExactEnergyIsExactlyConserved(t *testing.T) {
	// With rational arithmetic the conserved quantities need no tolerance:
	// compare the post-run kinetic energy against the initial one.
	s := piSystem(t, 10000, 10000)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	initial := 0.5 * 10000 * 1 * 1
	final := res.Block1.KineticEnergy() + res.Block2.KineticEnergy()
	// Float rounding enters only in the final conversion of the record.
	if diff := final - initial; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("energy drifted: initial %v, final %v", initial, final)
	}
}
