package internal

import "blockblast/internal/domain"

// Candidate is one legal placement of an active piece.
type Candidate struct {
	PieceIndex int
	Piece      domain.Piece
	X          int
	Y          int
}

// GetCandidates returns every legal placement of every piece, in piece order and
// then row-major origin order.
func GetCandidates(grid domain.Grid, pieces []domain.Piece) []Candidate {
	var out []Candidate
	for i, p := range pieces {
		for _, origin := range domain.LegalOrigins(grid, p) {
			out = append(out, Candidate{PieceIndex: i, Piece: p, X: origin.X, Y: origin.Y})
		}
	}
	return out
}

// Outcome is the board after a candidate is applied.
type Outcome struct {
	Grid   domain.Grid
	Lines  int
	Points int
}

// Apply simulates a candidate without touching any game.
func Apply(grid domain.Grid, c Candidate, policy domain.ScoringPolicy) Outcome {
	cleared, next := domain.ClearLines(domain.Place(grid, c.Piece, c.X, c.Y))
	return Outcome{
		Grid:   next,
		Lines:  len(cleared),
		Points: policy.Score(cleared, c.Piece.Size()),
	}
}

// Without returns pieces minus the element at idx.
func Without(pieces []domain.Piece, idx int) []domain.Piece {
	out := make([]domain.Piece, 0, len(pieces)-1)
	out = append(out, pieces[:idx]...)
	return append(out, pieces[idx+1:]...)
}
