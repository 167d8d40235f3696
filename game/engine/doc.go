// Package engine provides the deterministic world and state engine for the
// coin cache game.
//
// The engine package implements:
//   - A deterministic generator (Luck) deciding cache presence and initial coins
//   - Mapping between geographic coordinates and integer grid cells
//   - A world store that lazily materializes caches exactly once per cell
//   - The player's inventory and the collect/deposit transfers with score
//   - A snapshot stack for undoing world changes
//   - Export and tolerant import of the persisted state record
//
// Core Types:
//
// The Engine interface defines the contract for game operations,
// implemented by GameEngine. GameState is the read-only view handed to
// renderers, Record is the persisted form, and GameConfig describes a world
// (tile size, neighborhood radius, spawn probability, start location).
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Move(engine.North)
//	for _, cache := range gameEngine.Refresh() {
//		if len(cache.Coins) > 0 {
//			gameEngine.Collect(cache.Cell, cache.Coins[0])
//		}
//	}
//	state := gameEngine.GetState()
//
// Game Rules:
//
// A cell (i, j) holds a cache when Luck.Value("i,j") is below the spawn
// probability; it starts with floor(Luck.Value("i,j,coins") * multiplier)
// coins with serials 0..n-1. Collecting moves a coin into the inventory
// and adds a point; depositing returns the most recently collected coin to
// any cache and takes a point away. Coins are never created or destroyed by
// transfers.
//
// Materialization:
//
// A cache is minted the first time its cell is materialized. The world
// records this by key presence, so a cache emptied by collection stays
// empty instead of being minted again.
package engine
