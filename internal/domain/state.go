package domain

// Phase represents the lifecycle stage of a Block Blast session.
type Phase string

const (
	// PhaseReady is the initial state: empty grid and no pieces on offer.
	PhaseReady Phase = "ready"
	// PhasePlaying indicates pieces are on offer and placements are accepted.
	PhasePlaying Phase = "playing"
	// PhaseGameOver is entered when no offered piece fits anywhere on the grid.
	PhaseGameOver Phase = "gameOver"
)

const (
	// GridSize is the width and height of the square board.
	GridSize = 10
	// BatchSize is the number of pieces offered per batch.
	BatchSize = 3
)

// Cell holds the colour of the piece occupying a grid position, or "" when empty.
type Cell string

// EmptyCell is the zero Cell.
const EmptyCell Cell = ""

// IsEmpty reports whether no piece occupies the cell.
func (c Cell) IsEmpty() bool {
	return c == EmptyCell
}

// BlockPosition is an integer offset relative to a piece's local origin.
type BlockPosition struct {
	X int
	Y int
}

// Piece is an offered polyomino instance. Pieces are treated as immutable;
// every transform returns a copy with its own block slice.
type Piece struct {
	ID     string
	Blocks []BlockPosition
	Color  string
	Name   string
}

// Size returns the number of cells the piece covers.
func (p Piece) Size() int {
	return len(p.Blocks)
}

// Clone returns a copy of the piece that shares no memory with p.
func (p Piece) Clone() Piece {
	out := p
	out.Blocks = append([]BlockPosition(nil), p.Blocks...)
	return out
}

// LineKind tags a cleared line as a row or a column.
type LineKind string

const (
	LineRow    LineKind = "row"
	LineColumn LineKind = "column"
)

// ClearedLine identifies one full row or column removed by a placement.
type ClearedLine struct {
	Kind  LineKind
	Index int
}

// ClearedCell is a cell that was emptied by a line clear, with the colour it had before.
type ClearedCell struct {
	X     int
	Y     int
	Color Cell
}
