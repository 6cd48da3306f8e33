package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nkale/blockpi/internal/engine"
)

func sampleResult() (*engine.Result, engine.Block, engine.Block) {
	b1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	b2 := engine.Block{Mass: 100, Pos: 3, Vel: -1}
	res := &engine.Result{
		Events: []engine.Event{
			{Index: 1, Time: 1.0, Kind: engine.KindPair, X1: 2, V1: -1.9801980198019802, X2: 2, V2: -0.9801980198019802},
			{Index: 2, Time: 2.01, Kind: engine.KindWall, X1: 0, V1: 1.9801980198019802, X2: 0.03, V2: -0.9801980198019802},
		},
		Collisions:       2,
		Block1:           b1,
		Block2:           b2,
		Wall:             engine.Wall{Pos: 0},
		Elapsed:          2.01,
		SmallestInterval: 1.0,
		Metrics:          map[string]float64{"energy_drift": 1e-16},
	}
	return res, b1, b2
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res, b1, b2 := sampleResult()
	runID, err := st.Save("pi1", b1, b2, 1000, false, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Scenario != "pi1" {
		t.Errorf("expected scenario 'pi1', got '%s'", meta.Scenario)
	}
	if meta.Collisions != 2 {
		t.Errorf("expected 2 collisions, got %d", meta.Collisions)
	}
	if meta.Block2.Mass != 100 {
		t.Errorf("expected block 2 mass 100, got %f", meta.Block2.Mass)
	}
	if meta.Metrics["energy_drift"] != 1e-16 {
		t.Errorf("unexpected metrics: %v", meta.Metrics)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0] != res.Events[0] {
		t.Errorf("event round trip: expected %+v, got %+v", res.Events[0], events[0])
	}
	if events[1].Kind != engine.KindWall {
		t.Errorf("expected wall event, got %v", events[1].Kind)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	res, b1, b2 := sampleResult()
	if _, err := st.Save("", b1, b2, 1000, false, res); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Scenario != "run" {
		t.Errorf("expected fallback scenario 'run', got '%s'", runs[0].Scenario)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res, b1, b2 := sampleResult()
	runID, err := st.Save("pi1", b1, b2, 1000, false, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "events.csv")); os.IsNotExist(err) {
		t.Error("events.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	res, _, _ := sampleResult()
	meta := &RunMetadata{ID: "pi1_1", Scenario: "pi1", Collisions: 2, Metrics: res.Metrics}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, res.Events); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if data.Collisions != 2 || len(data.Events) != 2 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Events[1].Kind != engine.KindWall {
		t.Errorf("kind should survive JSON round trip, got %v", data.Events[1].Kind)
	}
}
