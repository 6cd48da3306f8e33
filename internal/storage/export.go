package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/nkale/blockpi/internal/engine"
)

type ExportData struct {
	ID               string             `json:"id"`
	Scenario         string             `json:"scenario"`
	Wall             float64            `json:"wall"`
	Collisions       int                `json:"collisions"`
	Elapsed          float64            `json:"elapsed"`
	SmallestInterval float64            `json:"smallest_interval"`
	Events           []engine.Event     `json:"events"`
	Metrics          map[string]float64 `json:"metrics"`
}

func exportData(meta *RunMetadata, events []engine.Event) ExportData {
	return ExportData{
		ID:               meta.ID,
		Scenario:         meta.Scenario,
		Wall:             meta.Wall,
		Collisions:       meta.Collisions,
		Elapsed:          meta.Elapsed,
		SmallestInterval: meta.SmallestInterval,
		Events:           events,
		Metrics:          meta.Metrics,
	}
}

func ExportJSON(w io.Writer, meta *RunMetadata, events []engine.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, events))
}

func ExportJSONFile(path string, meta *RunMetadata, events []engine.Event) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, events)
}
