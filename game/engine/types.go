package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// World defaults, matching the classic world
	DefaultTileDegrees      = 1e-4
	DefaultNeighborhoodSize = 8
	DefaultSpawnProbability = 0.1
	DefaultCoinMultiplier   = 10

	// Validation constants
	MinTileDegrees      = 1e-7
	MaxTileDegrees      = 1.0
	MaxNeighborhoodSize = 64
	MaxCoinMultiplier   = 1000
	WebSocketBufferSize = 256
)

// Direction names accepted by Move
const (
	North = "north"
	South = "south"
	East  = "east"
	West  = "west"
)

// GridCell identifies a fixed-size geographic tile
type GridCell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Key returns the stable "i,j" encoding of the cell
func (c GridCell) Key() string {
	return strconv.Itoa(c.I) + "," + strconv.Itoa(c.J)
}

// String implements fmt.Stringer
func (c GridCell) String() string {
	return c.Key()
}

// ParseCellKey reverses GridCell.Key
func ParseCellKey(key string) (GridCell, error) {
	parts := strings.Split(strings.TrimSpace(key), ",")
	if len(parts) != 2 {
		return GridCell{}, fmt.Errorf("invalid cell key %q: expected \"i,j\"", key)
	}
	i, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return GridCell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	j, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return GridCell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return GridCell{I: i, J: j}, nil
}

// Coin is a token identified by the cell that minted it and a serial
// unique within that cell. Identity never changes as the coin moves.
type Coin struct {
	Original GridCell `json:"original"`
	Serial   int      `json:"serial"`
}

// String returns the display label, e.g. "369894:-1220628#3"
func (c Coin) String() string {
	return fmt.Sprintf("%d:%d#%d", c.Original.I, c.Original.J, c.Serial)
}

// ParseCoin reverses Coin.String
func ParseCoin(label string) (Coin, error) {
	label = strings.TrimSpace(label)
	hash := strings.LastIndex(label, "#")
	if hash < 0 {
		return Coin{}, fmt.Errorf("invalid coin %q: missing serial", label)
	}
	cell, err := ParseCellKey(strings.Replace(label[:hash], ":", ",", 1))
	if err != nil {
		return Coin{}, fmt.Errorf("invalid coin %q: %w", label, err)
	}
	serial, err := strconv.Atoi(label[hash+1:])
	if err != nil || serial < 0 {
		return Coin{}, fmt.Errorf("invalid coin %q: bad serial", label)
	}
	return Coin{Original: cell, Serial: serial}, nil
}

// LatLng is a geographic coordinate in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Cache is a copy of the coins currently present at a cell
type Cache struct {
	Cell  GridCell `json:"cell"`
	Coins []Coin   `json:"coins"`
}

// GameMessages holds the status texts shown to the player
type GameMessages struct {
	Welcome     string `json:"welcome"`
	Points      string `json:"points"`
	Collected   string `json:"collected"`
	Deposited   string `json:"deposited"`
	CantCollect string `json:"cant_collect"`
	CantDeposit string `json:"cant_deposit"`
	Moved       string `json:"moved"`
	Snapshot    string `json:"snapshot"`
	Undone      string `json:"undone"`
	NothingUndo string `json:"nothing_to_undo"`
	Reset       string `json:"reset"`
}

// GameConfig represents a world configuration loaded from JSON
type GameConfig struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	TileDegrees      float64      `json:"tile_degrees"`
	NeighborhoodSize int          `json:"neighborhood_size"`
	SpawnProbability float64      `json:"spawn_probability"`
	CoinMultiplier   int          `json:"coin_multiplier"`
	Salt             string       `json:"salt,omitempty"`
	Start            LatLng       `json:"start"`
	Messages         GameMessages `json:"messages"`
}

// CoinView is a coin as presented to a renderer
type CoinView struct {
	Coin
	Label string `json:"label"`
	Home  LatLng `json:"home"` // anchor of the coin's origin cell
}

// CacheView is a materialized cache as presented to a renderer
type CacheView struct {
	Cell     GridCell   `json:"cell"`
	Key      string     `json:"key"`
	Anchor   LatLng     `json:"anchor"`
	Distance int        `json:"distance"` // Chebyshev distance from the player cell
	Coins    []CoinView `json:"coins"`
}

// GameState is the read-only view of a session handed to renderers
type GameState struct {
	ConfigName string      `json:"config_name"`
	Score      int         `json:"score"`
	Inventory  []CoinView  `json:"inventory"`
	Position   LatLng      `json:"position"`
	PlayerCell GridCell    `json:"player_cell"`
	Path       []LatLng    `json:"path"`
	Caches     []CacheView `json:"caches"`
	Message    string      `json:"message"`
	TotalMoves int         `json:"total_moves"`
	Snapshots  int         `json:"snapshots"`
	WorldCells int         `json:"world_cells"`
	WorldCoins int         `json:"world_coins"`
}

// Record is the persisted form of a session's mutable state
type Record struct {
	PlayerPoints    int               `json:"playerPoints"`
	PlayerInventory []Coin            `json:"playerInventory"`
	CacheCoins      map[string][]Coin `json:"cacheCoins"`
	PlayerPath      []LatLng          `json:"playerPath"`
}

// Record field names, shared by every persistence backend
const (
	FieldPlayerPoints    = "playerPoints"
	FieldPlayerInventory = "playerInventory"
	FieldCacheCoins      = "cacheCoins"
	FieldPlayerPath      = "playerPath"
)

// RecordFields lists the record field names in a stable order
var RecordFields = []string{FieldPlayerPoints, FieldPlayerInventory, FieldCacheCoins, FieldPlayerPath}
