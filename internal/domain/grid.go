package domain

// Grid is the fixed-size occupancy map, indexed [y][x].
// It is a value type: assigning or passing a Grid copies every cell.
type Grid [GridSize][GridSize]Cell

// NewGrid returns an all-empty grid.
func NewGrid() Grid {
	return Grid{}
}

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < GridSize && y >= 0 && y < GridSize
}

// Cell returns the cell at (x, y). ok is false when the position is off the board.
func (g Grid) Cell(x, y int) (Cell, bool) {
	if !InBounds(x, y) {
		return EmptyCell, false
	}
	return g[y][x], true
}

// IsEmpty reports whether (x, y) is on the board and unoccupied.
func (g Grid) IsEmpty(x, y int) bool {
	c, ok := g.Cell(x, y)
	return ok && c.IsEmpty()
}

// Filled returns the number of occupied cells.
func (g Grid) Filled() int {
	n := 0
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if !g[y][x].IsEmpty() {
				n++
			}
		}
	}
	return n
}

// CanPlace reports whether every block of p, offset by (originX, originY),
// lands on an empty cell inside the board. A piece without blocks never fits.
func CanPlace(g Grid, p Piece, originX, originY int) bool {
	if len(p.Blocks) == 0 {
		return false
	}
	for _, b := range p.Blocks {
		if !g.IsEmpty(originX+b.X, originY+b.Y) {
			return false
		}
	}
	return true
}

// Place returns a copy of g with p written at (originX, originY).
// Callers validate with CanPlace first; Place does not re-check occupancy.
// Blocks that would fall off the board are skipped.
func Place(g Grid, p Piece, originX, originY int) Grid {
	out := g
	for _, b := range p.Blocks {
		x, y := originX+b.X, originY+b.Y
		if !InBounds(x, y) {
			continue
		}
		out[y][x] = Cell(p.Color)
	}
	return out
}

// LegalOrigins lists every origin at which p can be placed, scanning rows top to bottom.
func LegalOrigins(g Grid, p Piece) []BlockPosition {
	var origins []BlockPosition
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if CanPlace(g, p, x, y) {
				origins = append(origins, BlockPosition{X: x, Y: y})
			}
		}
	}
	return origins
}

// HasLegalOrigin reports whether p fits anywhere on g. It checks all N² origins.
func HasLegalOrigin(g Grid, p Piece) bool {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if CanPlace(g, p, x, y) {
				return true
			}
		}
	}
	return false
}
