package engine

// Inventory holds the player's coins in acquisition order.
// Deposits take from the end: last collected, first deposited.
type Inventory struct {
	coins []Coin
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{coins: []Coin{}}
}

// Push appends a collected coin
func (inv *Inventory) Push(coin Coin) {
	inv.coins = append(inv.coins, coin)
}

// Pop removes and returns the most recently collected coin
func (inv *Inventory) Pop() (Coin, bool) {
	if len(inv.coins) == 0 {
		return Coin{}, false
	}
	last := inv.coins[len(inv.coins)-1]
	inv.coins = inv.coins[:len(inv.coins)-1]
	return last, true
}

// Peek returns the coin Pop would return without removing it
func (inv *Inventory) Peek() (Coin, bool) {
	if len(inv.coins) == 0 {
		return Coin{}, false
	}
	return inv.coins[len(inv.coins)-1], true
}

// Len returns the number of held coins
func (inv *Inventory) Len() int {
	return len(inv.coins)
}

// Contains reports whether coin is held
func (inv *Inventory) Contains(coin Coin) bool {
	return indexOfCoin(inv.coins, coin) >= 0
}

// Coins returns a copy of the held coins in acquisition order
func (inv *Inventory) Coins() []Coin {
	return cloneCoins(inv.coins)
}

// Replace installs a copy of coins as the held coins
func (inv *Inventory) Replace(coins []Coin) {
	inv.coins = cloneCoins(coins)
}

// Clear empties the inventory
func (inv *Inventory) Clear() {
	inv.coins = []Coin{}
}
