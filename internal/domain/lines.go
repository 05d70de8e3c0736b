package domain

// DetectFullLines returns every fully occupied row and column of g.
// Rows are listed first, then columns, each in ascending index order.
// Both axes are read from the same snapshot, so a cell may belong to a
// reported row and a reported column at once.
func DetectFullLines(g Grid) []ClearedLine {
	var lines []ClearedLine

	for y := 0; y < GridSize; y++ {
		full := true
		for x := 0; x < GridSize; x++ {
			if g[y][x].IsEmpty() {
				full = false
				break
			}
		}
		if full {
			lines = append(lines, ClearedLine{Kind: LineRow, Index: y})
		}
	}

	for x := 0; x < GridSize; x++ {
		full := true
		for y := 0; y < GridSize; y++ {
			if g[y][x].IsEmpty() {
				full = false
				break
			}
		}
		if full {
			lines = append(lines, ClearedLine{Kind: LineColumn, Index: x})
		}
	}

	return lines
}

// ClearLines detects the full lines of g and returns them with a copy of g
// in which they are emptied. The row pass and the column pass are independent.
func ClearLines(g Grid) ([]ClearedLine, Grid) {
	lines := DetectFullLines(g)
	out := g

	for _, line := range lines {
		if line.Kind != LineRow {
			continue
		}
		for x := 0; x < GridSize; x++ {
			out[line.Index][x] = EmptyCell
		}
	}

	for _, line := range lines {
		if line.Kind != LineColumn {
			continue
		}
		for y := 0; y < GridSize; y++ {
			out[y][line.Index] = EmptyCell
		}
	}

	return lines, out
}

// ClearedCells lists the cells covered by lines with the colours they had in g.
// A cell at the crossing of a cleared row and column is reported once.
func ClearedCells(g Grid, lines []ClearedLine) []ClearedCell {
	var seen [GridSize][GridSize]bool
	var cells []ClearedCell

	add := func(x, y int) {
		if seen[y][x] {
			return
		}
		seen[y][x] = true
		cells = append(cells, ClearedCell{X: x, Y: y, Color: g[y][x]})
	}

	for _, line := range lines {
		if line.Index < 0 || line.Index >= GridSize {
			continue
		}
		switch line.Kind {
		case LineRow:
			for x := 0; x < GridSize; x++ {
				add(x, line.Index)
			}
		case LineColumn:
			for y := 0; y < GridSize; y++ {
				add(line.Index, y)
			}
		}
	}
	return cells
}
