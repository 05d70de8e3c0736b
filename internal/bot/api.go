package bot

import (
	"errors"

	"blockblast/internal/domain"
)

// ErrNoMove is returned when no active piece fits anywhere on the board.
var ErrNoMove = errors.New("bot: no legal move")

// Move represents the decision made by the AI.
type Move struct {
	PieceID string
	X       int
	Y       int
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(game *domain.Game) (Move, error)
}
