package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const denseConfig = `{
	"name": "Dense",
	"description": "Every cell holds a cache",
	"tile_degrees": 0.0001,
	"neighborhood_size": 2,
	"spawn_probability": 1,
	"coin_multiplier": 10,
	"start": {"lat": 0.00055, "lng": 0.00055},
	"messages": {"welcome": "Go!"}
}`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "validate_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeTemp(t, tempDir(t), "dense.json", denseConfig)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.Name != "Dense" {
		t.Errorf("Expected name Dense, got %q", result.Name)
	}

	joined := strings.Join(result.Errors, "\n")
	for _, want := range []string{"✓ Name: Dense", "✓ Start cell 5,5: 25 caches", "✓ Salt: (none)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected %q in info:\n%s", want, joined)
		}
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "malformed json",
			content:  `{"name": `,
			expected: "Invalid JSON",
		},
		{
			name:     "unknown field",
			content:  strings.Replace(denseConfig, `"spawn_probability"`, `"spawn_probabilty"`, 1),
			expected: "unknown field",
		},
		{
			name:     "spawn probability out of range",
			content:  strings.Replace(denseConfig, `"spawn_probability": 1`, `"spawn_probability": 1.5`, 1),
			expected: "spawn_probability",
		},
		{
			name:     "points message without verb",
			content:  strings.Replace(denseConfig, `{"welcome": "Go!"}`, `{"welcome": "Go!", "points": "lots"}`, 1),
			expected: "messages.points",
		},
		{
			name:     "start off the globe",
			content:  strings.Replace(denseConfig, `"lat": 0.00055`, `"lat": 95`, 1),
			expected: "not a valid coordinate",
		},
		{
			name: "nothing to collect",
			content: strings.NewReplacer(
				`"spawn_probability": 1`, `"spawn_probability": 0.000000001`,
				`"neighborhood_size": 2`, `"neighborhood_size": 0`,
			).Replace(denseConfig),
			expected: "Playability failure",
		},
	}

	dir := tempDir(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, dir, "config.json", tt.content)
			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !strings.Contains(strings.Join(result.Errors, "\n"), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(tempDir(t), "nope.json"))
	if result.Valid || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected read failure, got %+v", result)
	}
}

func TestValidateDir_DuplicateNames(t *testing.T) {
	dir := tempDir(t)
	writeTemp(t, dir, "a.json", denseConfig)
	writeTemp(t, dir, "b.json", denseConfig)
	writeTemp(t, dir, "c.json", strings.Replace(denseConfig, `"Dense"`, `"Other"`, 1))
	writeTemp(t, dir, "notes.txt", "ignored")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	for _, r := range results {
		wantValid := r.File == "c.json"
		if r.Valid != wantValid {
			t.Errorf("%s: expected valid=%v, got %v (%v)", r.File, wantValid, r.Valid, r.Errors)
		}
		if !wantValid && !strings.Contains(strings.Join(r.Errors, "\n"), "a.json, b.json") {
			t.Errorf("%s: expected duplicate files listed, got %v", r.File, r.Errors)
		}
	}
}

func TestValidateDir_ShippedConfigs(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	results, err := validateDir("../configs")
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	for _, r := range results {
		if !r.Valid {
			t.Errorf("%s is invalid: %v", r.File, r.Errors)
		}
	}
}
