// Package storage persists completed runs under a data directory, one
// subdirectory per run holding metadata.json and events.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nkale/blockpi/internal/engine"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type BodyMetadata struct {
	Mass   float64 `json:"mass"`
	Pos    float64 `json:"pos"`
	Vel    float64 `json:"vel"`
	Length float64 `json:"length"`
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Scenario         string             `json:"scenario"`
	Timestamp        time.Time          `json:"timestamp"`
	Wall             float64            `json:"wall"`
	Block1           BodyMetadata       `json:"block1"`
	Block2           BodyMetadata       `json:"block2"`
	MaxEvents        int                `json:"max_events"`
	Exact            bool               `json:"exact"`
	Collisions       int                `json:"collisions"`
	Elapsed          float64            `json:"elapsed"`
	SmallestInterval float64            `json:"smallest_interval"`
	Metrics          map[string]float64 `json:"metrics"`
}

func bodyMeta(b engine.Block) BodyMetadata {
	return BodyMetadata{Mass: b.Mass, Pos: b.Pos, Vel: b.Vel, Length: b.Length}
}

// Save writes one completed run. b1 and b2 are the initial block states;
// the result holds the finals. Runs are written only after the engine is
// done, so a failed write never corrupts a computed sequence.
func (s *Store) Save(scenario string, b1, b2 engine.Block, maxEvents int, exact bool, result *engine.Result) (string, error) {
	if scenario == "" {
		scenario = "run"
	}
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:               runID,
		Scenario:         scenario,
		Timestamp:        time.Now(),
		Wall:             result.Wall.Pos,
		Block1:           bodyMeta(b1),
		Block2:           bodyMeta(b2),
		MaxEvents:        maxEvents,
		Exact:            exact,
		Collisions:       result.Collisions,
		Elapsed:          result.Elapsed,
		SmallestInterval: result.SmallestInterval,
		Metrics:          result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "events.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"index", "time", "kind", "x1", "v1", "x2", "v2"}); err != nil {
		return "", err
	}

	for _, ev := range result.Events {
		row := []string{
			strconv.Itoa(ev.Index),
			strconv.FormatFloat(ev.Time, 'g', 17, 64),
			ev.Kind.String(),
			strconv.FormatFloat(ev.X1, 'g', 17, 64),
			strconv.FormatFloat(ev.V1, 'g', 17, 64),
			strconv.FormatFloat(ev.X2, 'g', 17, 64),
			strconv.FormatFloat(ev.V2, 'g', 17, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadEvents(runID string) ([]engine.Event, error) {
	csvPath := filepath.Join(s.baseDir, runID, "events.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []engine.Event{}, nil
	}

	events := make([]engine.Event, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 7 {
			continue
		}

		kind, err := engine.ParseKind(record[2])
		if err != nil {
			continue
		}

		idx, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		fields := make([]float64, 5)
		ok := true
		for i, col := range []string{record[1], record[3], record[4], record[5], record[6]} {
			v, err := strconv.ParseFloat(col, 64)
			if err != nil {
				ok = false
				break
			}
			fields[i] = v
		}
		if !ok {
			continue
		}

		events = append(events, engine.Event{
			Index: idx,
			Time:  fields[0],
			Kind:  kind,
			X1:    fields[1],
			V1:    fields[2],
			X2:    fields[3],
			V2:    fields[4],
		})
	}

	return events, nil
}
