package engine

import "math"

// Grid maps continuous coordinates onto integer tiles
type Grid struct {
	TileDegrees float64
}

// NewGrid creates a grid mapper; a non-positive tile size uses the default
func NewGrid(tileDegrees float64) Grid {
	if tileDegrees <= 0 {
		tileDegrees = DefaultTileDegrees
	}
	return Grid{TileDegrees: tileDegrees}
}

// ToCell returns the tile containing (lat, lng)
func (g Grid) ToCell(lat, lng float64) GridCell {
	return GridCell{
		I: int(math.Floor(lat / g.TileDegrees)),
		J: int(math.Floor(lng / g.TileDegrees)),
	}
}

// Anchor returns the coordinate a cell's marker is placed at
func (g Grid) Anchor(cell GridCell) LatLng {
	return LatLng{
		Lat: float64(cell.I) * g.TileDegrees,
		Lng: float64(cell.J) * g.TileDegrees,
	}
}

// Neighborhood returns every cell within Chebyshev distance radius of
// center, row-major. A negative radius yields nothing.
func (g Grid) Neighborhood(center GridCell, radius int) []GridCell {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	cells := make([]GridCell, 0, side*side)
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			cells = append(cells, GridCell{I: center.I + di, J: center.J + dj})
		}
	}
	return cells
}

// ChebyshevDistance returns max(|di|, |dj|)
func ChebyshevDistance(a, b GridCell) int {
	di := abs(a.I - b.I)
	dj := abs(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
