package engine

import (
	"errors"
	"fmt"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state queries
	GetState() *GameState
	GetConfig() *GameConfig
	GetScore() int
	GetInventory() []Coin
	GetPosition() LatLng
	GetPlayerCell() GridCell
	GetPath() []LatLng

	// Movement
	Move(direction string) bool
	MoveTo(pos LatLng) bool
	Refresh() []Cache
	Neighborhood(radius int) []GridCell

	// Caches and transfers
	Materialize(cell GridCell) Cache
	GetCache(cell GridCell) (Cache, bool)
	SpawnsCache(cell GridCell) bool
	Collect(cell GridCell, coin Coin) bool
	Deposit(cell GridCell) bool

	// Snapshots
	SaveSnapshot() int
	Undo() bool

	// Lifecycle and persistence
	Reset()
	ExportState() *Record
	ImportState(record *Record) error
}

// ErrMalformedRecord is returned when a persisted record cannot be applied
var ErrMalformedRecord = errors.New("malformed state record")

// GameEngine implements the Engine interface. It is not safe for
// concurrent use; callers serialize access.
type GameEngine struct {
	config    *GameConfig
	luck      *Luck
	grid      Grid
	world     *World
	inventory *Inventory
	caretaker *Caretaker

	score    int
	position LatLng
	path     []LatLng
	moves    int
	message  string
}

// NewEngine creates a game engine for the provided world configuration,
// spawns the caches around the start location and snapshots that world
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	luck := NewLuckFromConfig(config)
	e := &GameEngine{
		config:    config,
		luck:      luck,
		grid:      NewGrid(config.TileDegrees),
		world:     NewWorld(luck),
		inventory: NewInventory(),
		caretaker: NewCaretaker(),
	}
	e.start()
	e.Refresh()
	e.caretaker.Save(e.world.Mapping())

	return e, nil
}

// NewEngineWithDefaults creates a game engine for the classic world
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// start puts the player back at the start location with a fresh path
func (e *GameEngine) start() {
	e.score = 0
	e.moves = 0
	e.position = e.config.Start
	e.path = []LatLng{e.config.Start}
	e.message = e.config.Messages.Welcome
}

// GetConfig returns the world configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetInventory returns the held coins, oldest first
func (e *GameEngine) GetInventory() []Coin {
	return e.inventory.Coins()
}

// GetPosition returns the player's coordinate
func (e *GameEngine) GetPosition() LatLng {
	return e.position
}

// GetPlayerCell returns the tile under the player
func (e *GameEngine) GetPlayerCell() GridCell {
	return e.grid.ToCell(e.position.Lat, e.position.Lng)
}

// GetPath returns a copy of the movement history
func (e *GameEngine) GetPath() []LatLng {
	out := make([]LatLng, len(e.path))
	copy(out, e.path)
	return out
}

// Grid returns the coordinate mapper in use
func (e *GameEngine) Grid() Grid {
	return e.grid
}

// Luck returns the generator in use
func (e *GameEngine) Luck() *Luck {
	return e.luck
}

// Materialize returns the cache at cell, minting it on first access
func (e *GameEngine) Materialize(cell GridCell) Cache {
	return e.world.Materialize(cell)
}

// GetCache returns the cache at cell without materializing it
func (e *GameEngine) GetCache(cell GridCell) (Cache, bool) {
	return e.world.Get(cell)
}

// SpawnsCache reports whether the generator places a cache at cell
func (e *GameEngine) SpawnsCache(cell GridCell) bool {
	return e.luck.SpawnDecision(cell.I, cell.J)
}

// Neighborhood returns the cells within radius of the player
func (e *GameEngine) Neighborhood(radius int) []GridCell {
	return e.grid.Neighborhood(e.GetPlayerCell(), radius)
}

// Refresh materializes every cache that spawns within the configured
// neighborhood of the player and returns them row-major. Caches that fall
// out of range are kept.
func (e *GameEngine) Refresh() []Cache {
	var caches []Cache
	for _, cell := range e.Neighborhood(e.config.NeighborhoodSize) {
		if e.luck.SpawnDecision(cell.I, cell.J) {
			caches = append(caches, e.world.Materialize(cell))
		}
	}
	return caches
}

// Collect moves coin from the cache at cell into the inventory.
// It is a no-op returning false when the coin is not there any more.
func (e *GameEngine) Collect(cell GridCell, coin Coin) bool {
	if !e.world.Contains(cell, coin) {
		e.message = e.config.Messages.CantCollect
		return false
	}

	e.world.RemoveCoin(cell, coin)
	e.inventory.Push(coin)
	e.score++
	e.message = e.transferMessage(e.config.Messages.Collected, coin)
	return true
}

// Deposit moves the most recently collected coin into the cache at cell.
// It is a no-op returning false when the inventory is empty, the score is
// not positive, or cell has no cache.
func (e *GameEngine) Deposit(cell GridCell) bool {
	if e.inventory.Len() == 0 || e.score <= 0 || !e.world.IsMaterialized(cell) {
		e.message = e.config.Messages.CantDeposit
		return false
	}

	coin, _ := e.inventory.Pop()
	e.world.AddCoin(cell, coin)
	e.score--
	e.message = e.transferMessage(e.config.Messages.Deposited, coin)
	return true
}

func (e *GameEngine) transferMessage(format string, coin Coin) string {
	points := fmt.Sprintf(e.config.Messages.Points, e.score)
	if format == "" {
		return points
	}
	return fmt.Sprintf(format, coin.String()) + " " + points
}

// SaveSnapshot pushes a copy of the world and returns the stack depth
func (e *GameEngine) SaveSnapshot() int {
	e.caretaker.Save(e.world.Mapping())
	e.message = e.config.Messages.Snapshot
	return e.caretaker.Len()
}

// Undo replaces the world with the most recent snapshot. Inventory and
// score are left alone.
func (e *GameEngine) Undo() bool {
	mapping, ok := e.caretaker.Restore()
	if !ok {
		e.message = e.config.Messages.NothingUndo
		return false
	}
	e.world.Replace(mapping)
	e.message = e.config.Messages.Undone
	return true
}

// Reset clears score, inventory, world and snapshots and returns the
// player to the start. Caches materialize again on next access.
func (e *GameEngine) Reset() {
	e.start()
	e.inventory.Clear()
	e.world.Clear()
	e.caretaker.Clear()
	e.message = e.config.Messages.Reset
}

// GetState builds the renderer view: score, inventory, position, path and
// the materialized caches within the configured neighborhood
func (e *GameEngine) GetState() *GameState {
	playerCell := e.GetPlayerCell()

	caches := []CacheView{}
	for _, cell := range e.grid.Neighborhood(playerCell, e.config.NeighborhoodSize) {
		if cache, ok := e.world.Get(cell); ok {
			caches = append(caches, e.cacheView(cache, playerCell))
		}
	}

	return &GameState{
		ConfigName: e.config.Name,
		Score:      e.score,
		Inventory:  e.coinViews(e.inventory.Coins()),
		Position:   e.position,
		PlayerCell: playerCell,
		Path:       e.GetPath(),
		Caches:     caches,
		Message:    e.message,
		TotalMoves: e.moves,
		Snapshots:  e.caretaker.Len(),
		WorldCells: e.world.Len(),
		WorldCoins: e.world.CoinCount(),
	}
}

// CacheView renders a cache for display relative to the player
func (e *GameEngine) CacheView(cache Cache) CacheView {
	return e.cacheView(cache, e.GetPlayerCell())
}

func (e *GameEngine) cacheView(cache Cache, playerCell GridCell) CacheView {
	return CacheView{
		Cell:     cache.Cell,
		Key:      cache.Cell.Key(),
		Anchor:   e.grid.Anchor(cache.Cell),
		Distance: ChebyshevDistance(cache.Cell, playerCell),
		Coins:    e.coinViews(cache.Coins),
	}
}

func (e *GameEngine) coinViews(coins []Coin) []CoinView {
	views := make([]CoinView, 0, len(coins))
	for _, coin := range coins {
		views = append(views, CoinView{
			Coin:  coin,
			Label: coin.String(),
			Home:  e.grid.Anchor(coin.Original),
		})
	}
	return views
}
