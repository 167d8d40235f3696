package engine

// Caretaker keeps a stack of world snapshots for undo.
// Every snapshot is a deep copy going in and coming out, so later changes
// to the live world never reach a saved snapshot.
type Caretaker struct {
	mementos []map[GridCell][]Coin
}

// NewCaretaker creates an empty snapshot stack
func NewCaretaker() *Caretaker {
	return &Caretaker{}
}

// Save pushes a deep copy of mapping
func (c *Caretaker) Save(mapping map[GridCell][]Coin) {
	c.mementos = append(c.mementos, cloneMapping(mapping))
}

// Restore pops the most recent snapshot and returns a deep copy of it
func (c *Caretaker) Restore() (map[GridCell][]Coin, bool) {
	if len(c.mementos) == 0 {
		return nil, false
	}
	top := c.mementos[len(c.mementos)-1]
	c.mementos[len(c.mementos)-1] = nil
	c.mementos = c.mementos[:len(c.mementos)-1]
	return cloneMapping(top), true
}

// Len returns the number of saved snapshots
func (c *Caretaker) Len() int {
	return len(c.mementos)
}

// Clear drops every snapshot
func (c *Caretaker) Clear() {
	c.mementos = nil
}
