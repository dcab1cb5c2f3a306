package geo

import "math"

// CellKey identifies one square cell of a Grid.
type CellKey struct {
	X int
	Y int
}

// Grid buckets points into square cells of roughly cellSizeKm per side so a
// proximity sweep only compares against the surrounding 3x3 block instead of
// every point.
type Grid struct {
	cellSize float64
	cells    map[CellKey][]int
}

// NewGrid builds an empty grid. Cell size is converted from kilometers to
// degrees at ~111 km per degree of latitude.
func NewGrid(cellSizeKm float64) *Grid {
	return &Grid{
		cellSize: cellSizeKm / 111.0,
		cells:    make(map[CellKey][]int),
	}
}

func (g *Grid) cellKey(p *Point) CellKey {
	lat, lon := p.Signed()
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert records id at the point's cell.
func (g *Grid) Insert(id int, p *Point) {
	key := g.cellKey(p)
	g.cells[key] = append(g.cells[key], id)
}

// Neighbors returns every id stored in the point's own cell and the eight
// surrounding cells. Candidates only; callers still verify real distance.
func (g *Grid) Neighbors(p *Point) []int {
	key := g.cellKey(p)
	var ids []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			ids = append(ids, g.cells[CellKey{X: key.X + dx, Y: key.Y + dy}]...)
		}
	}
	return ids
}
