package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Block1.Mass <= 0 || cfg.Block2.Mass <= 0 {
		t.Error("default masses should be positive")
	}
	if cfg.Block1.Pos <= cfg.Wall {
		t.Error("block 1 should start right of the wall")
	}
	if cfg.Block2.Pos < cfg.Block1.Pos+cfg.Block1.Length {
		t.Error("block 2 should start right of block 1")
	}
	if cfg.MaxEvents <= 0 {
		t.Error("max events should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pi2")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Block2.Mass != 1e4 {
		t.Errorf("expected mass 1e4, got %f", cfg.Block2.Mass)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) == 0 {
		t.Error("expected presets")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Block2.Mass = 1e4
	cfg.Exact = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Block2.Mass != 1e4 {
		t.Errorf("expected mass 1e4, got %f", loaded.Block2.Mass)
	}
	if !loaded.Exact {
		t.Error("expected exact flag to survive the round trip")
	}
}

func TestBodies(t *testing.T) {
	cfg := DefaultConfig()
	b1, b2, wall := cfg.Bodies()

	if b1.Mass != cfg.Block1.Mass || b2.Mass != cfg.Block2.Mass {
		t.Error("masses not carried over")
	}
	if wall.Pos != cfg.Wall {
		t.Error("wall position not carried over")
	}
}
