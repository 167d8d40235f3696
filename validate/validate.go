// Command validate provides a small CLI that validates world configuration
// JSON files in a configs directory (default ../configs). It checks:
//   - JSON structure, with unknown fields rejected so typos do not silently
//     fall back to defaults
//   - Field ranges and message verbs, as enforced by the engine
//   - Display names are unique across files, since stored sessions refer to
//     their world by name
//   - Playability: the start neighborhood holds at least one coin
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/geocoin-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw engine.GameConfig
	if err := dec.Decode(&raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	result.Name = config.Name

	reach := validatePlayability(config)
	if !reach.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reach.Errors...)

	// Add informational data
	if result.Valid {
		salt := "(none)"
		if config.Salt != "" {
			salt = config.Salt
		}
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Name: %s", config.Name),
			fmt.Sprintf("✓ Tile: %g degrees", config.TileDegrees),
			fmt.Sprintf("✓ Neighborhood: %d", config.NeighborhoodSize),
			fmt.Sprintf("✓ Spawn probability: %g", config.SpawnProbability),
			fmt.Sprintf("✓ Salt: %s", salt),
		)
	}

	return result
}

// validatePlayability ensures the player can collect something without
// moving: at least one cache with a coin within the neighborhood of the
// start cell.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	grid := engine.NewGrid(config.TileDegrees)
	luck := engine.NewLuckFromConfig(config)
	start := grid.ToCell(config.Start.Lat, config.Start.Lng)

	caches, coins := 0, 0
	for _, cell := range grid.Neighborhood(start, config.NeighborhoodSize) {
		if luck.SpawnDecision(cell.I, cell.J) {
			caches++
			coins += luck.InitialCoinCount(cell.I, cell.J)
		}
	}

	if coins == 0 {
		result.fail("Playability failure: no coins within %d cells of start cell %s (%d caches)",
			config.NeighborhoodSize, start.Key(), caches)
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Start cell %s: %d caches, %d coins in reach", start.Key(), caches, coins))
	}
	return result
}

// checkDuplicateNames marks results sharing a display name as invalid
func checkDuplicateNames(results []ValidationResult) {
	files := make(map[string][]string)
	for _, r := range results {
		if r.Name != "" {
			files[r.Name] = append(files[r.Name], r.File)
		}
	}
	for i := range results {
		if others := files[results[i].Name]; len(others) > 1 {
			results[i].fail("Duplicate name %q (also in %s)", results[i].Name, strings.Join(others, ", "))
		}
	}
}

// validateDir validates every *.json file in dir
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	checkDuplicateNames(results)
	return results, nil
}

// main validates every config in the directory given as the first argument
// (default ../configs), printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No config files in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
