package internal

import "blockblast/internal/domain"

// largeShapes are the templates whose room on the board is worth keeping.
var largeShapes = []string{"penta-h", "penta-v", "plus", "square"}

// BoardProfile summarises the structure of a grid.
type BoardProfile struct {
	Filled        int
	Holes         int // empty cells with no empty orthogonal neighbour
	NearFullLines int // rows and columns missing one or two cells
	Roughness     int // filled/empty transitions along rows and columns
	LargeFits     int // large templates that still have a legal origin
}

// ProfileBoard computes the structural features of g.
func ProfileBoard(g domain.Grid) BoardProfile {
	var p BoardProfile
	n := domain.GridSize

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !g.IsEmpty(x, y) {
				p.Filled++
				continue
			}
			if isHole(g, x, y) {
				p.Holes++
			}
		}
	}

	for i := 0; i < n; i++ {
		rowFilled, colFilled := 0, 0
		for j := 0; j < n; j++ {
			if !g.IsEmpty(j, i) {
				rowFilled++
			}
			if !g.IsEmpty(i, j) {
				colFilled++
			}
			if j > 0 {
				if g.IsEmpty(j, i) != g.IsEmpty(j-1, i) {
					p.Roughness++
				}
				if g.IsEmpty(i, j) != g.IsEmpty(i, j-1) {
					p.Roughness++
				}
			}
		}
		if rowFilled >= n-2 && rowFilled < n {
			p.NearFullLines++
		}
		if colFilled >= n-2 && colFilled < n {
			p.NearFullLines++
		}
	}

	for _, name := range largeShapes {
		shape, ok := domain.ShapeByName(name)
		if !ok {
			continue
		}
		if domain.HasLegalOrigin(g, domain.Piece{Blocks: shape.Blocks}) {
			p.LargeFits++
		}
	}

	return p
}

func isHole(g domain.Grid, x, y int) bool {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if c, ok := g.Cell(x+d[0], y+d[1]); ok && c.IsEmpty() {
			return false
		}
	}
	return true
}

// EvaluateBoard returns a heuristic score for g. Higher is better.
func EvaluateBoard(g domain.Grid, tuning BotTuning) float64 {
	profile := ProfileBoard(g)
	weights := tuning.ForPhase(DetectPhase(profile.Filled))
	return ScoreProfile(profile, weights)
}

// BoardBits packs the occupancy of g into two words: cells 0..63 in lo and the
// rest in hi, row-major. Colours are ignored.
func BoardBits(g domain.Grid) (lo, hi uint64) {
	n := domain.GridSize
	for i := 0; i < n*n; i++ {
		if g.IsEmpty(i%n, i/n) {
			continue
		}
		if i < 64 {
			lo |= 1 << uint(i)
		} else {
			hi |= 1 << uint(i-64)
		}
	}
	return lo, hi
}
