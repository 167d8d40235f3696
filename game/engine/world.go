package engine

import "sort"

// World owns every materialized cache. A key present in caches means the
// cell was materialized, even when its coin list is now empty.
type World struct {
	luck   *Luck
	caches map[GridCell][]Coin
}

// NewWorld creates an empty world backed by the given generator
func NewWorld(luck *Luck) *World {
	return &World{
		luck:   luck,
		caches: make(map[GridCell][]Coin),
	}
}

// Materialize returns the cache at cell, minting its initial coins on the
// first call only. An emptied cache is never repopulated.
func (w *World) Materialize(cell GridCell) Cache {
	if coins, ok := w.caches[cell]; ok {
		return Cache{Cell: cell, Coins: cloneCoins(coins)}
	}

	count := w.luck.InitialCoinCount(cell.I, cell.J)
	coins := make([]Coin, 0, count)
	for serial := 0; serial < count; serial++ {
		coins = append(coins, Coin{Original: cell, Serial: serial})
	}
	w.caches[cell] = coins

	return Cache{Cell: cell, Coins: cloneCoins(coins)}
}

// IsMaterialized reports whether cell has been materialized
func (w *World) IsMaterialized(cell GridCell) bool {
	_, ok := w.caches[cell]
	return ok
}

// Get returns the cache at cell without materializing it
func (w *World) Get(cell GridCell) (Cache, bool) {
	coins, ok := w.caches[cell]
	if !ok {
		return Cache{}, false
	}
	return Cache{Cell: cell, Coins: cloneCoins(coins)}, true
}

// Contains reports whether coin is currently at cell
func (w *World) Contains(cell GridCell, coin Coin) bool {
	return indexOfCoin(w.caches[cell], coin) >= 0
}

// RemoveCoin takes coin out of the cache at cell
func (w *World) RemoveCoin(cell GridCell, coin Coin) bool {
	coins, ok := w.caches[cell]
	if !ok {
		return false
	}
	idx := indexOfCoin(coins, coin)
	if idx < 0 {
		return false
	}
	w.caches[cell] = append(coins[:idx], coins[idx+1:]...)
	return true
}

// AddCoin appends coin to the cache at cell. The cell must be materialized.
func (w *World) AddCoin(cell GridCell, coin Coin) bool {
	coins, ok := w.caches[cell]
	if !ok {
		return false
	}
	w.caches[cell] = append(coins, coin)
	return true
}

// Cells returns the materialized cells sorted by (i, j)
func (w *World) Cells() []GridCell {
	cells := make([]GridCell, 0, len(w.caches))
	for cell := range w.caches {
		cells = append(cells, cell)
	}
	sortCells(cells)
	return cells
}

// Len returns the number of materialized cells
func (w *World) Len() int {
	return len(w.caches)
}

// CoinCount returns the number of coins across all caches
func (w *World) CoinCount() int {
	total := 0
	for _, coins := range w.caches {
		total += len(coins)
	}
	return total
}

// Mapping returns a deep copy of the cell to coins mapping
func (w *World) Mapping() map[GridCell][]Coin {
	return cloneMapping(w.caches)
}

// Replace installs a deep copy of mapping as the live state
func (w *World) Replace(mapping map[GridCell][]Coin) {
	w.caches = cloneMapping(mapping)
}

// Clear forgets every cache so cells materialize again on next access
func (w *World) Clear() {
	w.caches = make(map[GridCell][]Coin)
}

func indexOfCoin(coins []Coin, coin Coin) int {
	for i, c := range coins {
		if c == coin {
			return i
		}
	}
	return -1
}

func cloneCoins(coins []Coin) []Coin {
	out := make([]Coin, len(coins))
	copy(out, coins)
	return out
}

func cloneMapping(mapping map[GridCell][]Coin) map[GridCell][]Coin {
	out := make(map[GridCell][]Coin, len(mapping))
	for cell, coins := range mapping {
		out[cell] = cloneCoins(coins)
	}
	return out
}

func sortCells(cells []GridCell) {
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].I != cells[b].I {
			return cells[a].I < cells[b].I
		}
		return cells[a].J < cells[b].J
	})
}
