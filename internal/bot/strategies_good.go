package bot

import (
	"blockblast/internal/bot/internal"
	"blockblast/internal/domain"
)

// GoodBot greedily takes the placement with the best immediate score and resulting board.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(game *domain.Game) (Move, error) {
	if game == nil || game.Phase != domain.PhasePlaying {
		return Move{}, ErrNoMove
	}

	candidates := internal.GetCandidates(game.Grid, game.Pieces)
	if len(candidates) == 0 {
		return Move{}, ErrNoMove
	}

	scored := internal.BuildScoredMoves(game.Grid, candidates, game.Policy(), DefaultTuning, nil)

	ctx := &SelectionContext{Candidates: topTied(scored)}
	ctx.CurrentBest = ctx.Candidates[0]
	for _, rule := range defaultRules {
		rule.Apply(ctx)
	}
	return toMove(ctx.CurrentBest.Candidate), nil
}

// topTied returns the leading run of moves sharing the best score.
func topTied(scored []internal.ScoredMove) []internal.ScoredMove {
	n := 1
	for n < len(scored) && scored[n].Score == scored[0].Score {
		n++
	}
	return scored[:n]
}
