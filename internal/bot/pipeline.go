package bot

import (
	"blockblast/internal/bot/internal"
	"blockblast/internal/domain"
)

// SelectionContext holds the state for choosing between equally scored placements.
type SelectionContext struct {
	Candidates    []internal.ScoredMove
	CurrentBest   internal.ScoredMove
	SelectedIndex int
}

// SelectionRule represents a logic unit that can influence which placement is chosen.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

var defaultRules = []SelectionRule{
	&FavorClearsRule{},
	&FavorLargePiecesRule{},
	&FavorEdgesRule{},
}

// FavorClearsRule prefers placements that clear more lines.
type FavorClearsRule struct{}

func (r *FavorClearsRule) Name() string { return "FavorClears" }

func (r *FavorClearsRule) Apply(ctx *SelectionContext) {
	selectMax(ctx, func(sm internal.ScoredMove) int { return sm.Outcome.Lines })
}

// FavorLargePiecesRule prefers getting rid of bigger pieces while they still fit.
type FavorLargePiecesRule struct{}

func (r *FavorLargePiecesRule) Name() string { return "FavorLargePieces" }

func (r *FavorLargePiecesRule) Apply(ctx *SelectionContext) {
	selectMax(ctx, func(sm internal.ScoredMove) int { return sm.Candidate.Piece.Size() })
}

// FavorEdgesRule prefers placements hugging the border.
type FavorEdgesRule struct{}

func (r *FavorEdgesRule) Name() string { return "FavorEdges" }

func (r *FavorEdgesRule) Apply(ctx *SelectionContext) {
	selectMax(ctx, func(sm internal.ScoredMove) int { return edgeContacts(sm.Candidate) })
}

// selectMax moves the selection to the first candidate with a strictly higher metric.
func selectMax(ctx *SelectionContext, metric func(internal.ScoredMove) int) {
	bestIdx := ctx.SelectedIndex
	bestVal := metric(ctx.CurrentBest)

	for i, candidate := range ctx.Candidates {
		if v := metric(candidate); v > bestVal {
			bestVal = v
			bestIdx = i
		}
	}

	if bestIdx != ctx.SelectedIndex {
		ctx.SelectedIndex = bestIdx
		ctx.CurrentBest = ctx.Candidates[bestIdx]
	}
}

func edgeContacts(c internal.Candidate) int {
	n := 0
	last := domain.GridSize - 1
	for _, b := range c.Piece.Blocks {
		x, y := c.X+b.X, c.Y+b.Y
		if x == 0 || x == last {
			n++
		}
		if y == 0 || y == last {
			n++
		}
	}
	return n
}
