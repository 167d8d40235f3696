package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a world configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate world geometry
	if isBad(config.TileDegrees) || config.TileDegrees < MinTileDegrees || config.TileDegrees > MaxTileDegrees {
		return fmt.Errorf("config validation: tile_degrees must be between %g and %g, got %g",
			MinTileDegrees, MaxTileDegrees, config.TileDegrees)
	}
	if config.NeighborhoodSize < 0 || config.NeighborhoodSize > MaxNeighborhoodSize {
		return fmt.Errorf("config validation: neighborhood_size must be between 0 and %d, got %d",
			MaxNeighborhoodSize, config.NeighborhoodSize)
	}

	// Validate generation settings
	if isBad(config.SpawnProbability) || config.SpawnProbability <= 0 || config.SpawnProbability > 1 {
		return fmt.Errorf("config validation: spawn_probability must be in (0, 1], got %g", config.SpawnProbability)
	}
	if config.CoinMultiplier < 1 || config.CoinMultiplier > MaxCoinMultiplier {
		return fmt.Errorf("config validation: coin_multiplier must be between 1 and %d, got %d",
			MaxCoinMultiplier, config.CoinMultiplier)
	}

	// Validate start location
	if !ValidLatLng(config.Start) {
		return fmt.Errorf("config validation: start (%g, %g) is not a valid coordinate",
			config.Start.Lat, config.Start.Lng)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if !strings.Contains(config.Messages.Points, "%d") {
		return fmt.Errorf("config validation: messages.points must contain %%d for score")
	}
	for name, msg := range map[string]string{
		"collected": config.Messages.Collected,
		"deposited": config.Messages.Deposited,
	} {
		if msg != "" && !strings.Contains(msg, "%s") {
			return fmt.Errorf("config validation: messages.%s must contain %%s for the coin", name)
		}
	}

	return nil
}

// ValidLatLng reports whether p is a finite coordinate on the globe
func ValidLatLng(p LatLng) bool {
	if isBad(p.Lat) || isBad(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func isBad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// LoadGameConfig loads a world configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}
	return config, nil
}

// ParseGameConfig decodes JSON, fills defaults for omitted tuning fields,
// and validates the result
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&config)

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills zero-valued tuning fields and messages
func ApplyDefaults(config *GameConfig) {
	defaults := DefaultGameConfig()

	if config.TileDegrees == 0 {
		config.TileDegrees = defaults.TileDegrees
	}
	if config.NeighborhoodSize == 0 {
		config.NeighborhoodSize = defaults.NeighborhoodSize
	}
	if config.SpawnProbability == 0 {
		config.SpawnProbability = defaults.SpawnProbability
	}
	if config.CoinMultiplier == 0 {
		config.CoinMultiplier = defaults.CoinMultiplier
	}

	m := &config.Messages
	d := defaults.Messages
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Points, d.Points)
	fill(&m.Collected, d.Collected)
	fill(&m.Deposited, d.Deposited)
	fill(&m.CantCollect, d.CantCollect)
	fill(&m.CantDeposit, d.CantDeposit)
	fill(&m.Moved, d.Moved)
	fill(&m.Snapshot, d.Snapshot)
	fill(&m.Undone, d.Undone)
	fill(&m.NothingUndo, d.NothingUndo)
	fill(&m.Reset, d.Reset)
}

// DefaultGameConfig returns the classic world: the default tuning around
// the Oakes College classroom in Santa Cruz
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:             "classic",
		Description:      "Classic world around the Oakes College classroom",
		TileDegrees:      DefaultTileDegrees,
		NeighborhoodSize: DefaultNeighborhoodSize,
		SpawnProbability: DefaultSpawnProbability,
		CoinMultiplier:   DefaultCoinMultiplier,
		Start:            LatLng{Lat: 36.98949379578401, Lng: -122.06277128548504},
		Messages: GameMessages{
			Welcome:     "No points yet...",
			Points:      "%d points accumulated.",
			Collected:   "Collected coin %s.",
			Deposited:   "Deposited coin %s.",
			CantCollect: "That coin is no longer in this cache.",
			CantDeposit: "Nothing to deposit.",
			Moved:       "You moved.",
			Snapshot:    "World snapshot saved.",
			Undone:      "World restored to the last snapshot.",
			NothingUndo: "No snapshot to restore.",
			Reset:       "No points yet...",
		},
	}
}
