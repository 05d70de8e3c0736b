package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blockblast/internal/bot/internal"
)

func scoredAt(t *testing.T, id, name string, x, y, lines int) internal.ScoredMove {
	return internal.ScoredMove{
		Candidate: internal.Candidate{Piece: templatePiece(t, id, name), X: x, Y: y},
		Outcome:   internal.Outcome{Lines: lines},
	}
}

func TestSelectionRules(t *testing.T) {
	tests := []struct {
		name   string
		rule   SelectionRule
		moves  []internal.ScoredMove
		wantID string
	}{
		{
			name:   "clears",
			rule:   &FavorClearsRule{},
			moves:  []internal.ScoredMove{scoredAt(t, "a", "single", 4, 4, 0), scoredAt(t, "b", "single", 4, 4, 2)},
			wantID: "b",
		},
		{
			name:   "large pieces",
			rule:   &FavorLargePiecesRule{},
			moves:  []internal.ScoredMove{scoredAt(t, "a", "single", 4, 4, 0), scoredAt(t, "b", "square", 4, 4, 0)},
			wantID: "b",
		},
		{
			name:   "edges",
			rule:   &FavorEdgesRule{},
			moves:  []internal.ScoredMove{scoredAt(t, "a", "single", 4, 4, 0), scoredAt(t, "b", "single", 0, 0, 0)},
			wantID: "b",
		},
		{
			name:   "keeps first on tie",
			rule:   &FavorEdgesRule{},
			moves:  []internal.ScoredMove{scoredAt(t, "a", "single", 0, 5, 0), scoredAt(t, "b", "single", 9, 5, 0)},
			wantID: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &SelectionContext{Candidates: tt.moves, CurrentBest: tt.moves[0]}
			tt.rule.Apply(ctx)
			assert.Equal(t, tt.wantID, ctx.CurrentBest.Candidate.Piece.ID)
			assert.NotEmpty(t, tt.rule.Name())
		})
	}
}
