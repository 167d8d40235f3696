package engine

import "strings"

// directionDelta maps a direction to a (di, dj) tile step. The arrow
// aliases let keyboard-driven clients reuse the same names.
var directionDelta = map[string][2]int{
	North:   {1, 0},
	South:   {-1, 0},
	East:    {0, 1},
	West:    {0, -1},
	"up":    {1, 0},
	"down":  {-1, 0},
	"right": {0, 1},
	"left":  {0, -1},
}

// ValidDirection reports whether Move accepts direction
func ValidDirection(direction string) bool {
	_, ok := directionDelta[strings.ToLower(strings.TrimSpace(direction))]
	return ok
}

// Move steps the player one tile in direction and spawns the caches that
// come into range
func (e *GameEngine) Move(direction string) bool {
	delta, ok := directionDelta[strings.ToLower(strings.TrimSpace(direction))]
	if !ok {
		return false
	}

	next := LatLng{
		Lat: e.position.Lat + float64(delta[0])*e.grid.TileDegrees,
		Lng: e.position.Lng + float64(delta[1])*e.grid.TileDegrees,
	}
	return e.MoveTo(next)
}

// MoveTo relocates the player, as reported by a live position feed, and
// spawns the caches that come into range
func (e *GameEngine) MoveTo(pos LatLng) bool {
	if !ValidLatLng(pos) {
		return false
	}

	e.position = pos
	e.path = append(e.path, pos)
	e.moves++
	e.Refresh()
	e.message = e.config.Messages.Moved
	return true
}
