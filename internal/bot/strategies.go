package bot

import (
	"blockblast/internal/bot/internal"
	"blockblast/internal/domain"
)

// EasyBot plays the first legal placement in scan order.
type EasyBot struct{}

func (b *EasyBot) CalculateMove(game *domain.Game) (Move, error) {
	if game == nil || game.Phase != domain.PhasePlaying {
		return Move{}, ErrNoMove
	}
	candidates := internal.GetCandidates(game.Grid, game.Pieces)
	if len(candidates) == 0 {
		return Move{}, ErrNoMove
	}
	return toMove(candidates[0]), nil
}

func toMove(c internal.Candidate) Move {
	return Move{PieceID: c.Piece.ID, X: c.X, Y: c.Y}
}
