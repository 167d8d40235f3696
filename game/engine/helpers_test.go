package engine

import "testing"

// createTestConfig returns a small world where every cell holds a cache
func createTestConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "Engine Test Config"
	config.Description = "Configuration for engine tests"
	config.NeighborhoodSize = 2
	config.SpawnProbability = 1
	config.Start = LatLng{Lat: 0.00055, Lng: 0.00055}
	return config
}

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// findCellWithCoins scans cells (i, 0) for one that mints at least min coins
func findCellWithCoins(t *testing.T, luck *Luck, min int) GridCell {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if luck.InitialCoinCount(i, 0) >= min {
			return GridCell{I: i, J: 0}
		}
	}
	t.Fatalf("no cell with at least %d coins found", min)
	return GridCell{}
}

// totalCoins counts coins in caches plus the inventory
func totalCoins(e *GameEngine) int {
	return e.world.CoinCount() + e.inventory.Len()
}
