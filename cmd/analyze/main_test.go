package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/geocoin-game/game/engine"
)

func denseConfig() *engine.GameConfig {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "Dense"
	cfg.NeighborhoodSize = 1
	cfg.SpawnProbability = 1
	cfg.Start = engine.LatLng{Lat: 0.00055, Lng: 0.00055}
	return cfg
}

func writeConfig(t *testing.T, dir, name string, cfg *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestAnalyzeConfig(t *testing.T) {
	cfg := denseConfig()
	r := analyzeConfig("dense", cfg, 2)

	if r.Start != (engine.GridCell{I: 5, J: 5}) {
		t.Errorf("Expected start cell 5,5, got %v", r.Start)
	}
	if r.Cells != 25 || r.Caches != 25 {
		t.Errorf("Expected every sampled cell to spawn, got %d of %d", r.Caches, r.Cells)
	}
	if r.SpawnRate() != 1 {
		t.Errorf("Expected spawn rate 1, got %f", r.SpawnRate())
	}
	if r.StartCaches != 9 {
		t.Errorf("Expected 9 caches around the start, got %d", r.StartCaches)
	}

	luck := engine.NewLuckFromConfig(cfg)
	coins, empty := 0, 0
	for i := 3; i <= 7; i++ {
		for j := 3; j <= 7; j++ {
			n := luck.InitialCoinCount(i, j)
			coins += n
			if n == 0 {
				empty++
			}
		}
	}
	if r.Coins != coins || r.EmptyCaches != empty {
		t.Errorf("Expected %d coins and %d empty caches, got %d and %d", coins, empty, r.Coins, r.EmptyCaches)
	}
	if r.MaxCoins >= cfg.CoinMultiplier {
		t.Errorf("Coin count %d should stay below the multiplier %d", r.MaxCoins, cfg.CoinMultiplier)
	}
}

func TestAnalyzeConfig_Deterministic(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	a := analyzeConfig("classic", cfg, 20)
	b := analyzeConfig("classic", cfg, 20)
	if a != b {
		t.Errorf("Expected identical reports, got %+v and %+v", a, b)
	}

	cfg.Salt = "other"
	if salted := analyzeConfig("classic", cfg, 20); salted == a {
		t.Error("Expected a salted world to differ")
	}
}

func TestReportRatios(t *testing.T) {
	var r Report
	if r.SpawnRate() != 0 || r.MeanCoins() != 0 {
		t.Error("Expected zero ratios for an empty report")
	}

	r = Report{Cells: 10, Caches: 4, Coins: 10}
	if r.SpawnRate() != 0.4 {
		t.Errorf("Expected spawn rate 0.4, got %f", r.SpawnRate())
	}
	if r.MeanCoins() != 2.5 {
		t.Errorf("Expected mean 2.5, got %f", r.MeanCoins())
	}
}

func TestPrintReport(t *testing.T) {
	tests := []struct {
		name     string
		report   Report
		expected string
	}{
		{"coins in reach", Report{Name: "A", StartCoins: 3}, "✅"},
		{"nothing in reach", Report{Name: "B"}, "WARNING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, tt.report)
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected %q in:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestRun(t *testing.T) {
	dir, err := os.MkdirTemp("", "analyze_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	t.Run("empty directory", func(t *testing.T) {
		if err := run(&bytes.Buffer{}, dir, 5, nil); err == nil {
			t.Error("Expected error without configurations")
		}
	})

	writeConfig(t, dir, "dense", denseConfig())
	classic := engine.DefaultGameConfig()
	writeConfig(t, dir, "classic", classic)

	t.Run("all worlds", func(t *testing.T) {
		var buf bytes.Buffer
		if err := run(&buf, dir, 5, nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"=== Analyzing classic ===", "=== Analyzing dense ===", "Sampled Cells: 121 (radius 5)"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("named world", func(t *testing.T) {
		var buf bytes.Buffer
		if err := run(&buf, dir, 1, []string{"dense", "missing"}); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "Analyzing classic") {
			t.Error("Expected only named worlds")
		}
		if !strings.Contains(out, "Caches: 9 (spawn rate 1.000, configured 1.000)") {
			t.Errorf("Unexpected dense report:\n%s", out)
		}
		if !strings.Contains(out, "Error loading config") {
			t.Errorf("Expected an error for the missing world:\n%s", out)
		}
	})

	t.Run("negative radius", func(t *testing.T) {
		if err := run(&bytes.Buffer{}, dir, -1, nil); err == nil {
			t.Error("Expected error for negative radius")
		}
	})
}
