package service

import (
	"time"

	"github.com/wricardo/geocoin-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of a command. Success is false when a
// precondition did not hold; the state is unchanged in that case.
type ActionResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Coin      *engine.CoinView  `json:"coin,omitempty"`  // coin moved by collect or deposit
	Cache     *engine.CacheView `json:"cache,omitempty"` // cache after collect or deposit
}

// CacheResult describes one grid cell and its cache, if any
type CacheResult struct {
	Cell         engine.GridCell   `json:"cell"`
	Key          string            `json:"key"`
	Spawns       bool              `json:"spawns"`
	Materialized bool              `json:"materialized"`
	Cache        *engine.CacheView `json:"cache,omitempty"`
}

// NeighborhoodCell summarizes one cell of a neighborhood query
type NeighborhoodCell struct {
	Cell         engine.GridCell `json:"cell"`
	Key          string          `json:"key"`
	Spawns       bool            `json:"spawns"`
	Materialized bool            `json:"materialized"`
	Coins        int             `json:"coins"`
}

// NeighborhoodResult lists the cells around the player, row-major
type NeighborhoodResult struct {
	Center engine.GridCell    `json:"center"`
	Radius int                `json:"radius"`
	Cells  []NeighborhoodCell `json:"cells"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string         `json:"type"` // "move", "spawn", "collect", "deposit", "snapshot", "undo"
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Position  *engine.LatLng `json:"position,omitempty"`
}

// ConfigInfo provides information about a world configuration
type ConfigInfo struct {
	Filename         string        `json:"filename"`
	ConfigID         string        `json:"config_id"` // The identifier to use for session creation
	Name             string        `json:"name"`      // Display name
	Description      string        `json:"description"`
	TileDegrees      float64       `json:"tile_degrees"`
	NeighborhoodSize int           `json:"neighborhood_size"`
	SpawnProbability float64       `json:"spawn_probability"`
	Salted           bool          `json:"salted"`
	Start            engine.LatLng `json:"start"`
}

// NewConfigInfo summarizes config as stored in filename
func NewConfigInfo(filename, configID string, config *engine.GameConfig) *ConfigInfo {
	return &ConfigInfo{
		Filename:         filename,
		ConfigID:         configID,
		Name:             config.Name,
		Description:      config.Description,
		TileDegrees:      config.TileDegrees,
		NeighborhoodSize: config.NeighborhoodSize,
		SpawnProbability: config.SpawnProbability,
		Salted:           config.Salt != "",
		Start:            config.Start,
	}
}
